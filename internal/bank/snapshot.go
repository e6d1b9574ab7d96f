package bank

import (
	"context"
	"fmt"

	"github.com/abhisek/paperforge/internal/classify"
)

func divisionFromInt(n int) classify.Division {
	if n == int(classify.DivisionOne) {
		return classify.DivisionOne
	}
	return classify.DivisionTwo
}

// SaveSelection replaces the stored selection snapshot for a project
// section with rows, preserving their order.
func (s *Store) SaveSelection(ctx context.Context, project, section string, rows []SelectionRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin selection save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM selection_records WHERE project = ? AND section = ?", project, section); err != nil {
		return fmt.Errorf("clear selection snapshot: %w", err)
	}

	for i, r := range rows {
		_, err := tx.ExecContext(ctx, `INSERT INTO selection_records
			(project, section, position, item_uuid, chapter, chapter_name, difficulty, division, status)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			project, section, i, r.ItemID, r.ChapterCode, r.ChapterName,
			string(r.Difficulty), int(r.Division), r.Status)
		if err != nil {
			return fmt.Errorf("save selection row %s: %w", r.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selection save: %w", err)
	}
	return nil
}

// LoadSelection returns the stored snapshot for a project section in
// saved order. An absent snapshot yields an empty slice.
func (s *Store) LoadSelection(ctx context.Context, project, section string) ([]SelectionRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_uuid, chapter, chapter_name, difficulty, division, status
		FROM selection_records WHERE project = ? AND section = ? ORDER BY position`, project, section)
	if err != nil {
		return nil, fmt.Errorf("load selection snapshot: %w", err)
	}
	defer rows.Close()

	out := []SelectionRow{}
	for rows.Next() {
		var (
			r        SelectionRow
			division int
		)
		if err := rows.Scan(&r.ItemID, &r.ChapterCode, &r.ChapterName,
			(*string)(&r.Difficulty), &division, &r.Status); err != nil {
			return nil, fmt.Errorf("scan selection row: %w", err)
		}
		r.Division = divisionFromInt(division)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selection rows: %w", err)
	}
	return out, nil
}

// SelectionSections lists the section names with a stored snapshot for a
// project, in first-saved order.
func (s *Store) SelectionSections(ctx context.Context, project string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT section FROM selection_records WHERE project = ? GROUP BY section ORDER BY MIN(rowid)", project)
	if err != nil {
		return nil, fmt.Errorf("list selection sections: %w", err)
	}
	defer rows.Close()

	var sections []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan section name: %w", err)
		}
		sections = append(sections, name)
	}
	return sections, rows.Err()
}

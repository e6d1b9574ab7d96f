package bank

import (
	"context"
	"fmt"
)

// Stats summarizes the bank contents for the stats command.
type Stats struct {
	Total      int
	WithImages int
	ByPool     map[string]int
	ByChapter  map[string]int
}

// Stats computes bank-wide counts with per-pool and per-chapter
// breakdowns.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	out := &Stats{
		ByPool:    make(map[string]int),
		ByChapter: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM questions").Scan(&out.Total); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM questions WHERE question_image_url != ''").Scan(&out.WithImages); err != nil {
		return nil, fmt.Errorf("count image questions: %w", err)
	}

	if err := s.groupCount(ctx, "pool", out.ByPool); err != nil {
		return nil, err
	}
	if err := s.groupCount(ctx, "chapter", out.ByChapter); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) groupCount(ctx context.Context, column string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(*) FROM questions GROUP BY %s ORDER BY %s", column, column, column))
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		into[key] = count
	}
	return rows.Err()
}

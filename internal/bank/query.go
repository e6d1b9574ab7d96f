package bank

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/abhisek/paperforge/internal/classify"
)

const itemColumns = `uuid, question, question_image_url,
	option_a, option_a_image_url, option_b, option_b_image_url,
	option_c, option_c_image_url, option_d, option_d_image_url,
	answer, chapter, difficulty, pool, year,
	division_override, class_tag, frequency,
	tag_1, tag_2, tag_3, tag_4`

// choiceAnswerSQL mirrors classify: a multiple-choice answer is exactly
// one of A–D after trim+uppercase. Keep in sync with classify.Classify.
const choiceAnswerSQL = `UPPER(TRIM(answer)) IN ('A','B','C','D')`

// Candidates returns items matching the query scope, excluding the given
// identifiers. A miss yields an empty slice, never an error.
func (s *Store) Candidates(ctx context.Context, q CandidateQuery) ([]Item, error) {
	var (
		where []string
		args  []any
	)

	if q.Chapter != "" {
		where = append(where, "chapter = ?")
		args = append(args, q.Chapter)
	}
	if q.Pool != "" {
		where = append(where, "pool = ?")
		args = append(args, q.Pool)
	}
	if q.Class != 0 {
		where = append(where, "class_tag = ?")
		args = append(args, int(q.Class))
	}

	switch q.Division {
	case classify.DivisionOne:
		where = append(where, choiceAnswerSQL)
	case classify.DivisionTwo:
		where = append(where, "NOT "+choiceAnswerSQL)
	}

	if len(q.Exclude) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Exclude)), ",")
		where = append(where, fmt.Sprintf("uuid NOT IN (%s)", placeholders))
		for _, id := range q.Exclude {
			args = append(args, id)
		}
	}

	order := "RANDOM()"
	if q.PreferLeastUsed {
		order = "frequency ASC, rowid ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM questions", itemColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return items, nil
}

// Item fetches a single question by identifier.
func (s *Store) Item(ctx context.Context, id string) (Item, bool, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM questions WHERE uuid = ?", itemColumns), id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("load item %s: %w", id, err)
	}
	return it, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (Item, error) {
	var (
		it       Item
		override int
		class    int
		tags     [4]string
	)
	err := r.Scan(
		&it.ID, &it.Question, &it.QuestionImageURL,
		&it.OptionA.Text, &it.OptionA.ImageURL,
		&it.OptionB.Text, &it.OptionB.ImageURL,
		&it.OptionC.Text, &it.OptionC.ImageURL,
		&it.OptionD.Text, &it.OptionD.ImageURL,
		&it.Answer, &it.Chapter, (*string)(&it.Difficulty), &it.Pool, &it.Year,
		&override, &class, &it.Frequency,
		&tags[0], &tags[1], &tags[2], &tags[3],
	)
	if err != nil {
		return Item{}, err
	}
	it.Override = classify.Override(override)
	it.Class = ClassTag(class)
	for _, tag := range tags {
		if tag != "" {
			it.Tags = append(it.Tags, tag)
		}
	}
	return it, nil
}

// Insert adds a new question to the bank. Returns false without error
// when the identifier already exists.
func (s *Store) Insert(ctx context.Context, it Item) (bool, error) {
	var tags [4]string
	copy(tags[:], it.Tags)

	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO questions (
		uuid, question, question_image_url,
		option_a, option_a_image_url, option_b, option_b_image_url,
		option_c, option_c_image_url, option_d, option_d_image_url,
		answer, chapter, difficulty, pool, year,
		division_override, class_tag, frequency,
		tag_1, tag_2, tag_3, tag_4
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ID, it.Question, it.QuestionImageURL,
		it.OptionA.Text, it.OptionA.ImageURL,
		it.OptionB.Text, it.OptionB.ImageURL,
		it.OptionC.Text, it.OptionC.ImageURL,
		it.OptionD.Text, it.OptionD.ImageURL,
		it.Answer, it.Chapter, string(it.Difficulty), it.Pool, it.Year,
		int(it.Override), int(it.Class), it.Frequency,
		tags[0], tags[1], tags[2], tags[3],
	)
	if err != nil {
		return false, fmt.Errorf("insert question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert question: %w", err)
	}
	return n > 0, nil
}

// SetOverride updates the manual division override on a question.
func (s *Store) SetOverride(ctx context.Context, id string, override classify.Override) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE questions SET division_override = ?, updated_at = CURRENT_TIMESTAMP WHERE uuid = ?",
		int(override), id)
	if err != nil {
		return fmt.Errorf("set override on %s: %w", id, err)
	}
	return nil
}

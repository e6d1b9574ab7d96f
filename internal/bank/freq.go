package bank

import (
	"context"
	"fmt"
)

// IncrementFrequency bumps an item's usage counter by one (uncapped).
func (s *Store) IncrementFrequency(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE questions SET frequency = frequency + 1, updated_at = CURRENT_TIMESTAMP WHERE uuid = ?", id)
	if err != nil {
		return fmt.Errorf("increment frequency of %s: %w", id, err)
	}
	return requireRow(res, id)
}

// DecrementFrequency lowers an item's usage counter by one, floored at 0.
func (s *Store) DecrementFrequency(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE questions SET frequency = MAX(frequency - 1, 0), updated_at = CURRENT_TIMESTAMP WHERE uuid = ?", id)
	if err != nil {
		return fmt.Errorf("decrement frequency of %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res interface{ RowsAffected() (int64, error) }, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("frequency update of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("frequency update of %s: no such item", id)
	}
	return nil
}

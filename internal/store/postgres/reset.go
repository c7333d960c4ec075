package postgres

import "context"

// ResetHistory removes every history entry.
func (s *Store) ResetHistory(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE buyer_history`)
	return err
}

// ResetBuyers removes every lead. History rows cascade.
func (s *Store) ResetBuyers(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE buyers CASCADE`)
	return err
}

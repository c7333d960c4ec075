package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/leads/internal/core"
)

const insertHistorySQL = `INSERT INTO buyer_history (id, buyer_id, changed_by, changed_at, diff)
	VALUES ($1, $2, $3, $4, $5)`

func (s *Store) InsertHistory(ctx context.Context, e core.HistoryEntry) error {
	_, err := s.pool.Exec(ctx, insertHistorySQL, e.ID, e.BuyerID, e.ChangedBy, e.ChangedAt, []byte(e.Diff))
	return err
}

// InsertHistoryEntries sends all entries in one round trip.
func (s *Store) InsertHistoryEntries(ctx context.Context, es []core.HistoryEntry) error {
	if len(es) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range es {
		batch.Queue(insertHistorySQL, e.ID, e.BuyerID, e.ChangedBy, e.ChangedAt, []byte(e.Diff))
	}

	br := s.pool.SendBatch(ctx, batch)
	for i := range es {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert history %d: %w", i, err)
		}
	}
	return br.Close()
}

func (s *Store) ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]core.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, buyer_id, changed_by, changed_at, diff
		 FROM buyer_history WHERE buyer_id = $1
		 ORDER BY changed_at DESC LIMIT $2`,
		buyerID, limit,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.HistoryEntry, error) {
		var (
			e    core.HistoryEntry
			diff []byte
		)
		err := row.Scan(&e.ID, &e.BuyerID, &e.ChangedBy, &e.ChangedAt, &diff)
		e.Diff = diff
		return e, err
	})
}

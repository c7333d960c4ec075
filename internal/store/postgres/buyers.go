package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/leads/internal/core"
)

const buyerColumns = `id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, status, notes, tags, owner_id, updated_at`

var copyColumns = []string{
	"id", "full_name", "email", "phone", "city", "property_type", "bhk", "purpose",
	"budget_min", "budget_max", "timeline", "source", "status", "notes", "tags", "owner_id", "updated_at",
}

func buyerValues(b core.Buyer) ([]any, error) {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	budgetMin, err := toInt4(b.BudgetMin)
	if err != nil {
		return nil, err
	}
	budgetMax, err := toInt4(b.BudgetMax)
	if err != nil {
		return nil, err
	}
	return []any{
		b.ID, b.FullName, toText(b.Email), b.Phone, b.City, b.PropertyType, toText(b.BHK), b.Purpose,
		budgetMin, budgetMax, b.Timeline, b.Source, b.Status, toText(b.Notes),
		tags, b.OwnerID, b.UpdatedAt,
	}, nil
}

func scanBuyer(row pgx.Row) (core.Buyer, error) {
	var (
		b                    core.Buyer
		email, bhk, notes    pgtype.Text
		budgetMin, budgetMax pgtype.Int4
	)
	err := row.Scan(
		&b.ID, &b.FullName, &email, &b.Phone, &b.City, &b.PropertyType, &bhk, &b.Purpose,
		&budgetMin, &budgetMax, &b.Timeline, &b.Source, &b.Status, &notes,
		&b.Tags, &b.OwnerID, &b.UpdatedAt,
	)
	if err != nil {
		return core.Buyer{}, err
	}
	b.Email, b.BHK, b.Notes = email.String, bhk.String, notes.String
	b.BudgetMin, b.BudgetMax = fromInt4(budgetMin), fromInt4(budgetMax)
	b.UpdatedAt = core.Timestamp(b.UpdatedAt)
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b, nil
}

func (s *Store) InsertBuyer(ctx context.Context, b core.Buyer) error {
	values, err := buyerValues(b)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO buyers (`+buyerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		values...,
	)
	return err
}

// InsertBuyers loads all leads with one COPY. COPY is atomic: either every
// row lands or none does.
func (s *Store) InsertBuyers(ctx context.Context, bs []core.Buyer) error {
	if len(bs) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"buyers"}, copyColumns,
		pgx.CopyFromSlice(len(bs), func(i int) ([]any, error) {
			return buyerValues(bs[i])
		}),
	)
	if err != nil {
		return err
	}
	if int(n) != len(bs) {
		return fmt.Errorf("copy buyers: inserted %d of %d rows", n, len(bs))
	}
	return nil
}

func (s *Store) GetBuyer(ctx context.Context, id uuid.UUID) (core.Buyer, error) {
	b, err := scanBuyer(s.pool.QueryRow(ctx, `SELECT `+buyerColumns+` FROM buyers WHERE id = $1`, id))
	return b, notFound(err)
}

func (s *Store) GetBuyerVersion(ctx context.Context, id uuid.UUID) (core.Version, error) {
	var v core.Version
	err := s.pool.QueryRow(ctx, `SELECT owner_id, updated_at FROM buyers WHERE id = $1`, id).
		Scan(&v.OwnerID, &v.UpdatedAt)
	if err != nil {
		return core.Version{}, notFound(err)
	}
	v.UpdatedAt = core.Timestamp(v.UpdatedAt)
	return v, nil
}

// UpdateBuyer writes every editable field guarded by the expected
// updated_at. It reports false when no row matched.
func (s *Store) UpdateBuyer(ctx context.Context, b core.Buyer, expected time.Time) (bool, error) {
	values, err := buyerValues(b)
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE buyers SET
			full_name = $3, email = $4, phone = $5, city = $6, property_type = $7, bhk = $8,
			purpose = $9, budget_min = $10, budget_max = $11, timeline = $12, source = $13,
			status = $14, notes = $15, tags = $16, owner_id = $17, updated_at = $18
		 WHERE id = $1 AND updated_at = $2`,
		append([]any{b.ID, expected}, values[1:]...)...,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeleteBuyer(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListBuyers runs the filtered page query and an exact count.
func (s *Store) ListBuyers(ctx context.Context, q core.ListQuery) ([]core.Buyer, int64, error) {
	wb := NewWhereBuilder()
	wb.Add("city", q.City)
	wb.Add("property_type", q.PropertyType)
	wb.Add("status", q.Status)
	wb.Add("timeline", q.Timeline)
	wb.AddSearch(q.Search, "full_name", "phone", "email")
	where, args := wb.Build()

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM buyers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count buyers: %w", err)
	}

	query := `SELECT ` + buyerColumns + ` FROM buyers` + where + ` ORDER BY updated_at DESC, id`
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list buyers: %w", err)
	}
	defer rows.Close()

	buyers := []core.Buyer{}
	for rows.Next() {
		b, err := scanBuyer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan buyer: %w", err)
		}
		buyers = append(buyers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return buyers, total, nil
}

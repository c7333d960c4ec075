package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// exportPageSize is how many leads are fetched per store call during export.
const exportPageSize = 500

// ExportCSV writes every lead matching f as CSV, header first, in the same
// column layout ImportCSV accepts. It returns the number of data rows.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, f Filter) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	q := ListQuery{Filter: NormalizeFilter(f), Limit: exportPageSize}
	written := 0
	for {
		buyers, total, err := s.store.ListBuyers(ctx, q)
		if err != nil {
			return written, storeErr("list buyers", err)
		}
		for _, b := range buyers {
			if err := cw.Write(ExportRecord(b)); err != nil {
				return written, fmt.Errorf("write row: %w", err)
			}
			written++
		}
		q.Offset += len(buyers)
		if len(buyers) == 0 || int64(q.Offset) >= total {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}
	return written, nil
}

// ExportRecord renders one lead in ExportColumns order.
func ExportRecord(b Buyer) []string {
	return []string{
		b.ID.String(),
		b.FullName,
		b.Email,
		b.Phone,
		b.City,
		b.PropertyType,
		b.BHK,
		b.Purpose,
		formatBudget(b.BudgetMin),
		formatBudget(b.BudgetMax),
		b.Timeline,
		b.Source,
		b.Status,
		b.Notes,
		JoinTags(b.Tags),
		b.OwnerID.String(),
		b.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func formatBudget(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

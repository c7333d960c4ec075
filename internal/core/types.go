package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Buyer is a validated buyer lead.
type Buyer struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PropertyType string    `json:"propertyType"`
	BHK          string    `json:"bhk,omitempty"`
	Purpose      string    `json:"purpose"`
	BudgetMin    *int      `json:"budgetMin,omitempty"`
	BudgetMax    *int      `json:"budgetMax,omitempty"`
	Timeline     string    `json:"timeline"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	Tags         []string  `json:"tags"`
	OwnerID      uuid.UUID `json:"ownerId"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BuyerInput is the raw, unvalidated field set submitted by a form, an API
// client or a CSV row. Empty strings mean absent.
type BuyerInput struct {
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	City         string      `json:"city"`
	PropertyType string      `json:"propertyType"`
	BHK          string      `json:"bhk"`
	Purpose      string      `json:"purpose"`
	BudgetMin    NumericText `json:"budgetMin"`
	BudgetMax    NumericText `json:"budgetMax"`
	Timeline     string      `json:"timeline"`
	Source       string      `json:"source"`
	Status       string      `json:"status"`
	Notes        string      `json:"notes"`
	Tags         []string    `json:"tags"`
}

// NumericText holds a budget as submitted. JSON numbers, JSON strings and
// null are all accepted so form posts and API clients share one shape.
type NumericText string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericText(s)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("budget: %w", err)
		}
		*n = NumericText(num.String())
	}
	return nil
}

// InputFromBuyer converts a stored lead back into raw input, the shape the
// edit form starts from.
func InputFromBuyer(b Buyer) BuyerInput {
	in := BuyerInput{
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		City:         b.City,
		PropertyType: b.PropertyType,
		BHK:          b.BHK,
		Purpose:      b.Purpose,
		Timeline:     b.Timeline,
		Source:       b.Source,
		Status:       b.Status,
		Notes:        b.Notes,
		Tags:         append([]string(nil), b.Tags...),
	}
	if b.BudgetMin != nil {
		in.BudgetMin = NumericText(fmt.Sprint(*b.BudgetMin))
	}
	if b.BudgetMax != nil {
		in.BudgetMax = NumericText(fmt.Sprint(*b.BudgetMax))
	}
	return in
}

// HistoryEntry is one append-only audit record for a lead.
type HistoryEntry struct {
	ID        uuid.UUID       `json:"id"`
	BuyerID   uuid.UUID       `json:"buyerId"`
	ChangedBy uuid.UUID       `json:"changedBy"`
	ChangedAt time.Time       `json:"changedAt"`
	Diff      json.RawMessage `json:"diff"`
}

// Version is the concurrency-relevant part of a stored lead.
type Version struct {
	OwnerID   uuid.UUID
	UpdatedAt time.Time
}

// UpdateRequest carries one concurrency-checked edit.
type UpdateRequest struct {
	ID       uuid.UUID
	Input    BuyerInput
	LastSeen time.Time // updated_at the client last observed
	ActorID  uuid.UUID
}

// Filter holds the equality filters and search term of a list or export.
type Filter struct {
	City         string `json:"city,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`
	Status       string `json:"status,omitempty"`
	Timeline     string `json:"timeline,omitempty"`
	Search       string `json:"search,omitempty"`
}

// DefaultPageSize is the list page size when none is requested.
const DefaultPageSize = 10

// MaxPageSize caps the requested list page size.
const MaxPageSize = 100

// ListQuery is a filtered, paginated lead query as passed to a Store.
type ListQuery struct {
	Filter
	Limit  int // 0 = no limit
	Offset int
}

// ListRequest is a page request from a caller. Page is 1-based.
type ListRequest struct {
	Filter
	Page     int
	PageSize int
}

// ListResult is one page of leads.
type ListResult struct {
	Buyers     []Buyer `json:"buyers"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// ImportRow is one CSV data row keyed by canonical column name.
type ImportRow map[string]string

// RowError reports why one import row was rejected.
type RowError struct {
	Row     int               `json:"row"` // CSV line number, header is line 1
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	TotalRows   int        `json:"totalRows"`
	Inserted    int        `json:"inserted"`
	Rejected    int        `json:"rejected"`
	RowErrors   []RowError `json:"rowErrors,omitempty"`
	Errors      []string   `json:"errors"`
	InsertError string     `json:"insertError,omitempty"`
}

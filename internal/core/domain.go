package core

import (
	"strings"
	"time"
)

// Kind classifies a transaction as money coming in or going out.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day semantics.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and full RFC 3339 timestamps (browsers
// send the latter); the time-of-day portion is discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return Date{}, invalidField("date", "must be a calendar date (YYYY-MM-DD)")
}

func (d Date) String() string {
	return d.Time.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Transaction is a single ledger record owned by exactly one user.
// OwnerID and IdempotencyKey are fixed at creation and never change.
type Transaction struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Kind           Kind      `json:"kind"`
	Amount         Money     `json:"amount"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	OccurredOn     Date      `json:"occurredOn"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the persisted-record invariants: positive amount, known
// kind, non-empty category and description, and a real date.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return invalidField("amount", "must be greater than zero")
	}
	if !t.Kind.Valid() {
		return invalidField("kind", "must be 'income' or 'expense'")
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalidField("category", "must not be empty")
	}
	if strings.TrimSpace(t.Description) == "" {
		return invalidField("description", "must not be empty")
	}
	if t.OccurredOn.IsZero() {
		return invalidField("date", "must be provided")
	}
	return nil
}

// CreateRequest carries everything needed to record a new transaction.
type CreateRequest struct {
	OwnerID        string
	Kind           Kind
	Amount         Money
	Category       string
	Description    string
	OccurredOn     Date
	IdempotencyKey string
}

// Validate rejects the request before any write happens.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return invalidField("owner", "must be provided")
	}
	return Transaction{
		Kind:        r.Kind,
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
		OccurredOn:  r.OccurredOn,
	}.Validate()
}

// UpdateRequest is a merge patch: nil fields leave the stored value
// unchanged. There is deliberately no way to clear a field to empty, only
// to replace it with another valid value.
type UpdateRequest struct {
	Kind        *Kind
	Amount      *Money
	Category    *string
	Description *string
	OccurredOn  *Date
}

// Validate checks only the fields that are present.
func (r UpdateRequest) Validate() error {
	if r.Kind != nil && !r.Kind.Valid() {
		return invalidField("kind", "must be 'income' or 'expense'")
	}
	if r.Amount != nil && !r.Amount.IsPositive() {
		return invalidField("amount", "must be greater than zero")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		return invalidField("category", "must not be empty")
	}
	if r.Description != nil && strings.TrimSpace(*r.Description) == "" {
		return invalidField("description", "must not be empty")
	}
	if r.OccurredOn != nil && r.OccurredOn.IsZero() {
		return invalidField("date", "must be a calendar date")
	}
	return nil
}

// ApplyTo merges the present fields onto t.
func (r UpdateRequest) ApplyTo(t *Transaction) {
	if r.Kind != nil {
		t.Kind = *r.Kind
	}
	if r.Amount != nil {
		t.Amount = *r.Amount
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.OccurredOn != nil {
		t.OccurredOn = *r.OccurredOn
	}
}

// Sort orders accepted by ListFilter.
const (
	SortDateDesc = "date_desc"
	SortDateAsc  = "date_asc"
)

// ListFilter narrows a per-owner listing. Zero values mean "no filter";
// an empty Sort means store-native order.
type ListFilter struct {
	Category string
	Kind     Kind
	Sort     string
}

// Package report merges payments and expenses into one ledger list that can
// be searched and narrowed to a date range.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/rentdesk/internal/domain"
)

// Kind tells payment rows from expense rows.
type Kind string

const (
	KindPayment Kind = "payment"
	KindExpense Kind = "expense"
)

const unknownTenant = "Unknown Tenant"

// Row is one line of the report. Payments are dated by the start of the
// period they cover.
type Row struct {
	ID          uuid.UUID `json:"id"`
	Kind        Kind      `json:"type" enum:"payment,expense"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status,omitempty"`
}

// Filter narrows a report. Zero From or To leaves that side open; both bounds
// are inclusive whole days.
type Filter struct {
	Search string
	From   time.Time
	To     time.Time
}

// Build lists payments then expenses, keeping the rows that match f.
func Build(payments []domain.Payment, expenses []domain.Expense, f Filter) []Row {
	rows := make([]Row, 0, len(payments)+len(expenses))
	for i := range payments {
		rows = append(rows, paymentRow(&payments[i]))
	}
	for i := range expenses {
		rows = append(rows, expenseRow(&expenses[i]))
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	kept := rows[:0]
	for _, r := range rows {
		if r.matches(search) && inRange(r.Date, f.From, f.To) {
			kept = append(kept, r)
		}
	}
	return kept
}

func paymentRow(p *domain.Payment) Row {
	name := p.TenantName
	if name == "" {
		name = unknownTenant
	}
	return Row{
		ID:          p.ID,
		Kind:        KindPayment,
		Name:        name,
		Description: "Billing period: " + p.DateFrom.Format(time.DateOnly) + " - " + p.DateTo.Format(time.DateOnly),
		AmountCents: p.AmountCents,
		Date:        p.DateFrom,
		Status:      string(p.Status),
	}
}

func expenseRow(e *domain.Expense) Row {
	return Row{
		ID:          e.ID,
		Kind:        KindExpense,
		Name:        "Expense",
		Description: e.Description,
		AmountCents: e.AmountCents,
		Date:        e.Date,
	}
}

// matches reports whether the lowercased search term occurs in the row's
// type, name or description.
func (r Row) matches(search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(string(r.Kind), search) ||
		strings.Contains(strings.ToLower(r.Name), search) ||
		strings.Contains(strings.ToLower(r.Description), search)
}

func inRange(date, from, to time.Time) bool {
	d := civil(date)
	if !from.IsZero() && d.Before(civil(from)) {
		return false
	}
	if !to.IsZero() && d.After(civil(to)) {
		return false
	}
	return true
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

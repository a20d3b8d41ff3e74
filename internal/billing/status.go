// Package billing derives a tenant's rent status for the current billing
// cycle from its recurring due day and the payments recorded against it.
package billing

import (
	"time"

	"github.com/gosuda/rentdesk/internal/domain"
)

// Status is a tenant's rent standing for the current billing cycle. The
// values are stable wire strings.
type Status string

const (
	StatusOnTime      Status = "on_time"
	StatusOverdue     Status = "overdue"
	StatusIncomingDue Status = "incoming_due"
	StatusUpcoming    Status = "upcoming"
)

// IncomingWindow is how many days before the due date a tenant is reported
// as IncomingDue.
const IncomingWindow = 5

// String returns the dashboard label.
func (s Status) String() string {
	switch s {
	case StatusOnTime:
		return "On Time"
	case StatusOverdue:
		return "Overdue"
	case StatusIncomingDue:
		return "Incoming Due"
	case StatusUpcoming:
		return "Upcoming"
	default:
		return string(s)
	}
}

// Resolve classifies the tenant's payment state as of now. Payments recorded
// for other tenants are ignored, so callers may pass an unfiltered list.
//
// The due date is rebuilt from the due day on every call. A tenant stays
// Overdue until a payment covering the current cycle's due date exists.
func Resolve(tenant domain.Tenant, payments []domain.Payment, now time.Time) Status {
	today := civil(now)
	due := DueDate(tenant.DueDay(), now)
	paid := Covers(forTenant(tenant, payments), due)

	if today.After(due) {
		if paid {
			return StatusOnTime
		}
		return StatusOverdue
	}

	if paid {
		return StatusOnTime
	}

	if !today.Before(due.AddDate(0, 0, -IncomingWindow)) && today.Before(due) {
		return StatusIncomingDue
	}

	return StatusUpcoming
}

// DueDate returns the due date within now's calendar month, clamped to the
// month's last day when dueDay does not exist in it (31 in February).
// The result is a civil date at UTC midnight.
func DueDate(dueDay int, now time.Time) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	year, month, _ := now.Date()
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dueDay > last {
		dueDay = last
	}
	return time.Date(year, month, dueDay, 0, 0, 0, 0, time.UTC)
}

// Covers reports whether any payment's inclusive coverage interval contains
// day. Only calendar dates are compared.
func Covers(payments []domain.Payment, day time.Time) bool {
	d := civil(day)
	for i := range payments {
		from := civil(payments[i].DateFrom)
		to := civil(payments[i].DateTo)
		if !d.Before(from) && !d.After(to) {
			return true
		}
	}
	return false
}

// civil drops the time of day and location, keeping the calendar date as
// seen in t's own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func forTenant(tenant domain.Tenant, payments []domain.Payment) []domain.Payment {
	out := payments[:0:0]
	for i := range payments {
		if payments[i].TenantID == tenant.ID {
			out = append(out, payments[i])
		}
	}
	return out
}

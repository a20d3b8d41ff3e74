package domain_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/rentdesk/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// 1. Payment.Validate: coverage interval and status.
// ---------------------------------------------------------------------------

func TestPayment_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payment domain.Payment
		wantErr bool
	}{
		{
			name:    "single_day",
			payment: domain.Payment{DateFrom: day(2024, 3, 1), DateTo: day(2024, 3, 1), Status: domain.PaymentStatusPaid},
		},
		{
			name:    "month_pending",
			payment: domain.Payment{DateFrom: day(2024, 3, 1), DateTo: day(2024, 3, 31), Status: domain.PaymentStatusPending},
		},
		{
			name:    "reversed_range",
			payment: domain.Payment{DateFrom: day(2024, 3, 31), DateTo: day(2024, 3, 1), Status: domain.PaymentStatusPaid},
			wantErr: true,
		},
		{
			name:    "missing_from",
			payment: domain.Payment{DateTo: day(2024, 3, 1), Status: domain.PaymentStatusPaid},
			wantErr: true,
		},
		{
			name:    "unknown_status",
			payment: domain.Payment{DateFrom: day(2024, 3, 1), DateTo: day(2024, 3, 31), Status: "refunded"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.payment.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
		})
	}
}

// ---------------------------------------------------------------------------
// 2. Tenant.DueDay.
// ---------------------------------------------------------------------------

func TestTenant_DueDay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 31, domain.Tenant{DueDate: day(2023, time.January, 31)}.DueDay())
	assert.Equal(t, 15, domain.Tenant{DueDate: day(2020, time.June, 15)}.DueDay())
	assert.Equal(t, 1, domain.Tenant{}.DueDay(), "zero due date falls back to the 1st")
}

// ---------------------------------------------------------------------------
// 3. Collection names.
// ---------------------------------------------------------------------------

func TestValidCollection(t *testing.T) {
	t.Parallel()

	for _, name := range domain.CollectionNames() {
		assert.True(t, domain.ValidCollection(name), name)
	}
	assert.False(t, domain.ValidCollection("boards"))
	assert.False(t, domain.ValidCollection(""))
	assert.Len(t, domain.CollectionNames(), 5)
}

func TestCollectionNames_ReturnsCopy(t *testing.T) {
	t.Parallel()

	names := domain.CollectionNames()
	names[0] = "mutated"

	assert.Equal(t, domain.CollectionApartments, domain.CollectionNames()[0])
}

// ---------------------------------------------------------------------------
// 4. Sentinel errors: identity, distinctness, and wrapping.
// ---------------------------------------------------------------------------

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrUnauthorized,
		domain.ErrForbidden,
		domain.ErrInvalidInput,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}

			t.Run(a.Error()+"!="+b.Error(), func(t *testing.T) {
				t.Parallel()

				assert.NotErrorIs(t, a, b, "sentinel errors must be distinct")
			})
		}
	}
}

func TestSentinelErrors_WrappingPreservesIdentity(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrConflict, domain.ErrInvalidInput} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			t.Parallel()

			wrapped := fmt.Errorf("outer: %w", sentinel)
			require.ErrorIs(t, wrapped, sentinel)

			doubleWrapped := fmt.Errorf("outer2: %w", wrapped)
			require.ErrorIs(t, doubleWrapped, sentinel)
		})
	}
}

// ---------------------------------------------------------------------------
// 5. Status constants: string value regression guards.
// ---------------------------------------------------------------------------

func TestStatusConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "paid", string(domain.PaymentStatusPaid))
	assert.Equal(t, "pending", string(domain.PaymentStatusPending))
	assert.Equal(t, "vacant", string(domain.ApartmentStatusVacant))
	assert.Equal(t, "in_progress", string(domain.MaintenanceStatusInProgress))
	assert.Equal(t, "maintenance-requests", domain.CollectionMaintenance)
}

func TestStatus_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range domain.ValidApartmentStatuses {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range domain.ValidMaintenanceStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, domain.ApartmentStatus("demolished").Valid())
	assert.False(t, domain.MaintenanceStatus("").Valid())
}

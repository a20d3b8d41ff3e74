package billing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/rentdesk/internal/billing"
	"github.com/gosuda/rentdesk/internal/domain"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	aptID := uuid.New()
	apartments := []domain.Apartment{
		{ID: aptID, Name: "Unit 4B"},
		{ID: uuid.New(), Name: "Unit 1A"},
	}

	paid := domain.Tenant{ID: uuid.New(), Name: "Paid", DueDate: day(2024, time.January, 1), ApartmentID: &aptID, ApartmentName: "stale name"}
	late := domain.Tenant{ID: uuid.New(), Name: "Late", DueDate: day(2024, time.January, 5), ApartmentName: "Unit 9"}
	soon := domain.Tenant{ID: uuid.New(), Name: "Soon", DueDate: day(2024, time.January, 14)}
	later := domain.Tenant{ID: uuid.New(), Name: "Later", DueDate: day(2024, time.January, 28)}

	payments := []domain.Payment{
		paymentFor(paid, day(2024, time.March, 1), day(2024, time.March, 31)),
		paymentFor(late, day(2024, time.February, 1), day(2024, time.February, 29)),
	}

	now := day(2024, time.March, 10)
	ov := billing.Summarize([]domain.Tenant{paid, late, soon, later}, apartments, payments, now)

	assert.Equal(t, 4, ov.TotalTenants)
	assert.Equal(t, 2, ov.TotalApartments)
	assert.Equal(t, 1, ov.IncomingDue)
	assert.Equal(t, 1, ov.Overdue)

	require.Len(t, ov.Rows, 4)
	assert.Equal(t, "Paid", ov.Rows[0].Tenant.Name)
	assert.Equal(t, billing.StatusOnTime, ov.Rows[0].Status)
	assert.Equal(t, "Unit 4B", ov.Rows[0].ApartmentName)
	assert.Equal(t, day(2024, time.March, 1), ov.Rows[0].DueDate)

	assert.Equal(t, billing.StatusOverdue, ov.Rows[1].Status)
	assert.Equal(t, "Unit 9", ov.Rows[1].ApartmentName)

	assert.Equal(t, billing.StatusIncomingDue, ov.Rows[2].Status)
	assert.Equal(t, billing.StatusUpcoming, ov.Rows[3].Status)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	ov := billing.Summarize(nil, nil, nil, day(2024, time.March, 10))

	assert.Zero(t, ov.TotalTenants)
	assert.Zero(t, ov.TotalApartments)
	assert.Zero(t, ov.IncomingDue)
	assert.Zero(t, ov.Overdue)
	assert.NotNil(t, ov.Rows)
	assert.Empty(t, ov.Rows)
}

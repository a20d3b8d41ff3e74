package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/rentdesk/internal/domain"
)

// TenantRow is one line of the dashboard tenant table.
type TenantRow struct {
	Tenant        domain.Tenant `json:"tenant"`
	ApartmentName string        `json:"apartment_name"`
	DueDate       time.Time     `json:"due_date"`
	Status        Status        `json:"status"`
}

// Overview holds the dashboard headline counts and the tenant table.
type Overview struct {
	TotalTenants    int         `json:"total_tenants"`
	TotalApartments int         `json:"total_apartments"`
	IncomingDue     int         `json:"incoming_due"`
	Overdue         int         `json:"overdue"`
	Rows            []TenantRow `json:"rows"`
}

// Summarize resolves every tenant's status and counts the ones that need
// attention. Rows keep the order of tenants.
func Summarize(tenants []domain.Tenant, apartments []domain.Apartment, payments []domain.Payment, now time.Time) Overview {
	byTenant := make(map[uuid.UUID][]domain.Payment, len(tenants))
	for i := range payments {
		byTenant[payments[i].TenantID] = append(byTenant[payments[i].TenantID], payments[i])
	}

	names := make(map[uuid.UUID]string, len(apartments))
	for i := range apartments {
		names[apartments[i].ID] = apartments[i].Name
	}

	ov := Overview{
		TotalTenants:    len(tenants),
		TotalApartments: len(apartments),
		Rows:            make([]TenantRow, 0, len(tenants)),
	}

	for _, t := range tenants {
		status := Resolve(t, byTenant[t.ID], now)
		switch status {
		case StatusIncomingDue:
			ov.IncomingDue++
		case StatusOverdue:
			ov.Overdue++
		}

		name := t.ApartmentName
		if t.ApartmentID != nil {
			if n, ok := names[*t.ApartmentID]; ok {
				name = n
			}
		}

		ov.Rows = append(ov.Rows, TenantRow{
			Tenant:        t,
			ApartmentName: name,
			DueDate:       DueDate(t.DueDay(), now),
			Status:        status,
		})
	}

	return ov
}

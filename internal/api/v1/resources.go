package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/rentdesk/internal/domain"
)

type ApartmentBody struct {
	Name            string `json:"name" minLength:"1" maxLength:"255" doc:"Apartment name or unit number"`
	Type            string `json:"type,omitempty" maxLength:"100" doc:"Apartment type, e.g. studio"`
	RentAmountCents int64  `json:"rent_amount_cents" minimum:"0" doc:"Monthly rent in cents"`
	Status          string `json:"status,omitempty" enum:"vacant,occupied,maintenance" doc:"Defaults to vacant"`
	Address         string `json:"address,omitempty" maxLength:"500" doc:"Street address"`
}

type TenantBody struct {
	Name             string     `json:"name" minLength:"1" maxLength:"255" doc:"Tenant name"`
	Contact          string     `json:"contact,omitempty" maxLength:"100" doc:"Phone number"`
	Email            string     `json:"email,omitempty" maxLength:"255" format:"email" doc:"Email address"`
	Occupants        int        `json:"occupants,omitempty" minimum:"0" doc:"Number of occupants"`
	Address          string     `json:"address,omitempty" maxLength:"500" doc:"Previous address"`
	RentCents        int64      `json:"rent_cents" minimum:"0" doc:"Monthly rent in cents"`
	DueDate          string     `json:"due_date,omitempty" format:"date" doc:"First due date; its day of month recurs"`
	EmergencyName    string     `json:"emergency_name,omitempty" maxLength:"255" doc:"Emergency contact name"`
	EmergencyContact string     `json:"emergency_contact,omitempty" maxLength:"100" doc:"Emergency contact phone"`
	ApartmentID      *uuid.UUID `json:"apartment_id,omitempty" doc:"Assigned apartment"`
	ApartmentName    string     `json:"apartment_name,omitempty" maxLength:"255" doc:"Apartment name when no apartment is assigned"`
}

type PaymentBody struct {
	TenantID    uuid.UUID `json:"tenant_id" doc:"Paying tenant"`
	AmountCents int64     `json:"amount_cents" minimum:"0" doc:"Amount in cents"`
	DateFrom    string    `json:"date_from" format:"date" doc:"First covered day"`
	DateTo      string    `json:"date_to" format:"date" doc:"Last covered day, inclusive"`
	Status      string    `json:"status,omitempty" enum:"paid,pending" doc:"Defaults to paid"`
}

type ExpenseBody struct {
	Description string `json:"description" minLength:"1" maxLength:"500" doc:"What the money was spent on"`
	AmountCents int64  `json:"amount_cents" minimum:"0" doc:"Amount in cents"`
	Date        string `json:"date" format:"date" doc:"Day of the expense"`
}

type MaintenanceBody struct {
	TenantID    uuid.UUID `json:"tenant_id" doc:"Requesting tenant"`
	Description string    `json:"description" minLength:"1" maxLength:"1000" doc:"Problem description"`
	CostCents   int64     `json:"cost_cents,omitempty" minimum:"0" doc:"Repair cost in cents"`
	Status      string    `json:"status,omitempty" enum:"pending,in_progress,completed" doc:"Defaults to pending"`
}

func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %q is not a YYYY-MM-DD date: %w", field, s, domain.ErrInvalidInput)
	}
	return d, nil
}

// tenantExists turns a dangling tenant reference into an input error.
func tenantExists(ctx context.Context, store DataStore, ownerID, tenantID uuid.UUID) error {
	_, err := store.Tenants().GetByID(ctx, ownerID, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("tenant_id: unknown tenant %s: %w", tenantID, domain.ErrInvalidInput)
	}
	return err
}

func apartmentResource() resource[domain.Apartment, ApartmentBody] {
	return resource[domain.Apartment, ApartmentBody]{
		name: domain.CollectionApartments,
		noun: "apartment",
		tag:  "Apartments",
		repo: func(s DataStore) repository[domain.Apartment] { return s.Apartments() },
		id:   func(a *domain.Apartment) uuid.UUID { return a.ID },
		newRecord: func(ownerID uuid.UUID, now time.Time) *domain.Apartment {
			return &domain.Apartment{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
		},
		apply: func(b *ApartmentBody, a *domain.Apartment) error {
			status := domain.ApartmentStatus(b.Status)
			if status == "" {
				status = domain.ApartmentStatusVacant
			}
			if !status.Valid() {
				return fmt.Errorf("status: unknown apartment status %q: %w", b.Status, domain.ErrInvalidInput)
			}

			a.Name = b.Name
			a.Type = b.Type
			a.RentAmountCents = b.RentAmountCents
			a.Status = status
			a.Address = b.Address
			return nil
		},
	}
}

func tenantResource() resource[domain.Tenant, TenantBody] {
	return resource[domain.Tenant, TenantBody]{
		name: domain.CollectionTenants,
		noun: "tenant",
		tag:  "Tenants",
		repo: func(s DataStore) repository[domain.Tenant] { return s.Tenants() },
		id:   func(t *domain.Tenant) uuid.UUID { return t.ID },
		newRecord: func(ownerID uuid.UUID, now time.Time) *domain.Tenant {
			return &domain.Tenant{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
		},
		apply: func(b *TenantBody, t *domain.Tenant) error {
			var due time.Time
			if b.DueDate != "" {
				d, err := parseDate("due_date", b.DueDate)
				if err != nil {
					return err
				}
				due = d
			}

			t.Name = b.Name
			t.Contact = b.Contact
			t.Email = b.Email
			t.Occupants = b.Occupants
			t.Address = b.Address
			t.RentCents = b.RentCents
			t.DueDate = due
			t.EmergencyName = b.EmergencyName
			t.EmergencyContact = b.EmergencyContact
			t.ApartmentID = b.ApartmentID
			t.ApartmentName = b.ApartmentName
			return nil
		},
		check: func(ctx context.Context, store DataStore, ownerID uuid.UUID, t *domain.Tenant) error {
			if t.ApartmentID == nil {
				return nil
			}
			_, err := store.Apartments().GetByID(ctx, ownerID, *t.ApartmentID)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("apartment_id: unknown apartment %s: %w", *t.ApartmentID, domain.ErrInvalidInput)
			}
			return err
		},
	}
}

func paymentResource() resource[domain.Payment, PaymentBody] {
	return resource[domain.Payment, PaymentBody]{
		name: domain.CollectionPayments,
		noun: "payment",
		tag:  "Payments",
		repo: func(s DataStore) repository[domain.Payment] { return s.Payments() },
		id:   func(p *domain.Payment) uuid.UUID { return p.ID },
		newRecord: func(ownerID uuid.UUID, now time.Time) *domain.Payment {
			return &domain.Payment{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now}
		},
		apply: func(b *PaymentBody, p *domain.Payment) error {
			from, err := parseDate("date_from", b.DateFrom)
			if err != nil {
				return err
			}
			to, err := parseDate("date_to", b.DateTo)
			if err != nil {
				return err
			}

			p.TenantID = b.TenantID
			p.AmountCents = b.AmountCents
			p.DateFrom = from
			p.DateTo = to
			p.Status = domain.PaymentStatus(b.Status)
			if p.Status == "" {
				p.Status = domain.PaymentStatusPaid
			}
			return p.Validate()
		},
		check: func(ctx context.Context, store DataStore, ownerID uuid.UUID, p *domain.Payment) error {
			return tenantExists(ctx, store, ownerID, p.TenantID)
		},
	}
}

func expenseResource() resource[domain.Expense, ExpenseBody] {
	return resource[domain.Expense, ExpenseBody]{
		name: domain.CollectionExpenses,
		noun: "expense",
		tag:  "Expenses",
		repo: func(s DataStore) repository[domain.Expense] { return s.Expenses() },
		id:   func(e *domain.Expense) uuid.UUID { return e.ID },
		newRecord: func(ownerID uuid.UUID, now time.Time) *domain.Expense {
			return &domain.Expense{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now}
		},
		apply: func(b *ExpenseBody, e *domain.Expense) error {
			date, err := parseDate("date", b.Date)
			if err != nil {
				return err
			}

			e.Description = b.Description
			e.AmountCents = b.AmountCents
			e.Date = date
			return nil
		},
	}
}

func maintenanceResource() resource[domain.MaintenanceRequest, MaintenanceBody] {
	return resource[domain.MaintenanceRequest, MaintenanceBody]{
		name: domain.CollectionMaintenance,
		noun: "maintenance-request",
		tag:  "Maintenance",
		repo: func(s DataStore) repository[domain.MaintenanceRequest] { return s.Maintenance() },
		id:   func(m *domain.MaintenanceRequest) uuid.UUID { return m.ID },
		newRecord: func(ownerID uuid.UUID, now time.Time) *domain.MaintenanceRequest {
			return &domain.MaintenanceRequest{ID: uuid.New(), OwnerID: ownerID, CreatedAt: now}
		},
		apply: func(b *MaintenanceBody, m *domain.MaintenanceRequest) error {
			status := domain.MaintenanceStatus(b.Status)
			if status == "" {
				status = domain.MaintenanceStatusPending
			}
			if !status.Valid() {
				return fmt.Errorf("status: unknown maintenance status %q: %w", b.Status, domain.ErrInvalidInput)
			}

			m.TenantID = b.TenantID
			m.Description = b.Description
			m.CostCents = b.CostCents
			m.Status = status
			return nil
		},
		check: func(ctx context.Context, store DataStore, ownerID uuid.UUID, m *domain.MaintenanceRequest) error {
			return tenantExists(ctx, store, ownerID, m.TenantID)
		},
	}
}

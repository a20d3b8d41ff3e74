package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
)

// Payment covers the inclusive date range [DateFrom, DateTo] for one tenant.
type Payment struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	TenantID    uuid.UUID     `json:"tenant_id"`
	TenantName  string        `json:"tenant_name"`
	AmountCents int64         `json:"amount_cents"`
	DateFrom    time.Time     `json:"date_from"`
	DateTo      time.Time     `json:"date_to"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Validate checks the coverage interval and status.
func (p *Payment) Validate() error {
	if p.DateFrom.IsZero() || p.DateTo.IsZero() {
		return fmt.Errorf("payment: coverage dates required: %w", ErrInvalidInput)
	}
	if p.DateTo.Before(p.DateFrom) {
		return fmt.Errorf("payment: date_to before date_from: %w", ErrInvalidInput)
	}
	switch p.Status {
	case PaymentStatusPaid, PaymentStatusPending:
	default:
		return fmt.Errorf("payment: unknown status %q: %w", p.Status, ErrInvalidInput)
	}
	return nil
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*Page[Payment], error)
	ListByTenant(ctx context.Context, ownerID, tenantID uuid.UUID) ([]*Payment, error)
}

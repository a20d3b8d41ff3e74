package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

type ApartmentStatus string

const (
	ApartmentStatusVacant      ApartmentStatus = "vacant"
	ApartmentStatusOccupied    ApartmentStatus = "occupied"
	ApartmentStatusMaintenance ApartmentStatus = "maintenance"
)

// ValidApartmentStatuses is the canonical set of known apartment statuses.
var ValidApartmentStatuses = []ApartmentStatus{ //nolint:gochecknoglobals // canonical enum list
	ApartmentStatusVacant,
	ApartmentStatusOccupied,
	ApartmentStatusMaintenance,
}

func (s ApartmentStatus) Valid() bool {
	return slices.Contains(ValidApartmentStatuses, s)
}

type Apartment struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	RentAmountCents int64           `json:"rent_amount_cents"`
	Status          ApartmentStatus `json:"status"`
	Address         string          `json:"address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ApartmentRepository interface {
	Create(ctx context.Context, a *Apartment) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Apartment, error)
	Update(ctx context.Context, a *Apartment) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*Apartment, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*Page[Apartment], error)
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is a renter occupying (or assigned to) an apartment.
// DueDate is the first due date agreed with the tenant; only its day of month
// is meaningful afterwards, as the recurring due day.
type Tenant struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	Name             string     `json:"name"`
	Contact          string     `json:"contact"`
	Email            string     `json:"email"`
	Occupants        int        `json:"occupants"`
	Address          string     `json:"address"`
	RentCents        int64      `json:"rent_cents"`
	DueDate          time.Time  `json:"due_date"`
	EmergencyName    string     `json:"emergency_name"`
	EmergencyContact string     `json:"emergency_contact"`
	ApartmentID      *uuid.UUID `json:"apartment_id,omitempty"`
	ApartmentName    string     `json:"apartment_name"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DueDay returns the day of month on which rent recurs as due.
func (t Tenant) DueDay() int {
	if t.DueDate.IsZero() {
		return 1
	}
	return t.DueDate.Day()
}

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*Page[Tenant], error)
}

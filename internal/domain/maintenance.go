package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceStatusPending    MaintenanceStatus = "pending"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
)

// ValidMaintenanceStatuses is the canonical set of known maintenance statuses.
var ValidMaintenanceStatuses = []MaintenanceStatus{ //nolint:gochecknoglobals // canonical enum list
	MaintenanceStatusPending,
	MaintenanceStatusInProgress,
	MaintenanceStatusCompleted,
}

func (s MaintenanceStatus) Valid() bool {
	return slices.Contains(ValidMaintenanceStatuses, s)
}

type MaintenanceRequest struct {
	ID          uuid.UUID         `json:"id"`
	OwnerID     uuid.UUID         `json:"owner_id"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	Description string            `json:"description"`
	CostCents   int64             `json:"cost_cents"`
	Status      MaintenanceStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

type MaintenanceRepository interface {
	Create(ctx context.Context, m *MaintenanceRequest) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*MaintenanceRequest, error)
	Update(ctx context.Context, m *MaintenanceRequest) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*MaintenanceRequest, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*Page[MaintenanceRequest], error)
}

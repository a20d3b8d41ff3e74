package v1

import (
	"context"

	"github.com/gosuda/rentdesk/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Apartments() domain.ApartmentRepository
	Tenants() domain.TenantRepository
	Payments() domain.PaymentRepository
	Expenses() domain.ExpenseRepository
	Maintenance() domain.MaintenanceRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Publisher delivers mutation events to watching sessions.
// *ws.Hub satisfies this interface.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// MutationRecorder counts committed mutations.
// *metrics.Metrics satisfies this interface.
type MutationRecorder interface {
	RecordMutation(collection, op string)
}

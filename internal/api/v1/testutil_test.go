package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return middleware.WithUser(context.Background(), userID, "member")
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	apartments  *mockRepo[domain.Apartment]
	tenants     *mockRepo[domain.Tenant]
	payments    *mockPaymentRepo
	expenses    *mockRepo[domain.Expense]
	maintenance *mockRepo[domain.MaintenanceRequest]
}

func (m *mockDataStore) Apartments() domain.ApartmentRepository    { return m.apartments }
func (m *mockDataStore) Tenants() domain.TenantRepository          { return m.tenants }
func (m *mockDataStore) Payments() domain.PaymentRepository        { return m.payments }
func (m *mockDataStore) Expenses() domain.ExpenseRepository        { return m.expenses }
func (m *mockDataStore) Maintenance() domain.MaintenanceRepository { return m.maintenance }

// ---------------------------------------------------------------------------
// Mock repositories. Every entity repository has the same shape, so one
// generic mock covers them; payments add ListByTenant.
// ---------------------------------------------------------------------------

type mockRepo[T any] struct {
	createFunc  func(ctx context.Context, rec *T) error
	getByIDFunc func(ctx context.Context, ownerID, id uuid.UUID) (*T, error)
	updateFunc  func(ctx context.Context, rec *T) error
	deleteFunc  func(ctx context.Context, ownerID, id uuid.UUID) (*T, error)
	listFunc    func(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[T], error)
}

func (m *mockRepo[T]) Create(ctx context.Context, rec *T) error {
	return m.createFunc(ctx, rec)
}

func (m *mockRepo[T]) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*T, error) {
	return m.getByIDFunc(ctx, ownerID, id)
}

func (m *mockRepo[T]) Update(ctx context.Context, rec *T) error {
	return m.updateFunc(ctx, rec)
}

func (m *mockRepo[T]) Delete(ctx context.Context, ownerID, id uuid.UUID) (*T, error) {
	return m.deleteFunc(ctx, ownerID, id)
}

func (m *mockRepo[T]) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[T], error) {
	return m.listFunc(ctx, ownerID, params)
}

type mockPaymentRepo struct {
	mockRepo[domain.Payment]
	listByTenantFunc func(ctx context.Context, ownerID, tenantID uuid.UUID) ([]*domain.Payment, error)
}

func (m *mockPaymentRepo) ListByTenant(ctx context.Context, ownerID, tenantID uuid.UUID) ([]*domain.Payment, error) {
	return m.listByTenantFunc(ctx, ownerID, tenantID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Recording Publisher and MutationRecorder
// ---------------------------------------------------------------------------

type published struct {
	channel string
	payload []byte
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{channel: channel, payload: payload})
	return p.err
}

func (p *recordingPublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

type recordingMetrics struct {
	mu    sync.Mutex
	count map[string]int
}

func (r *recordingMetrics) RecordMutation(collection, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == nil {
		r.count = make(map[string]int)
	}
	r.count[collection+"/"+op]++
}

func (r *recordingMetrics) get(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count[key]
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/rentdesk/internal/domain"
)

type Store struct {
	pool        *pgxpool.Pool
	users       *UserRepo
	apartments  *ApartmentRepo
	tenants     *TenantRepo
	payments    *PaymentRepo
	expenses    *ExpenseRepo
	maintenance *MaintenanceRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:        pool,
		users:       NewUserRepo(pool),
		apartments:  NewApartmentRepo(pool),
		tenants:     NewTenantRepo(pool),
		payments:    NewPaymentRepo(pool),
		expenses:    NewExpenseRepo(pool),
		maintenance: NewMaintenanceRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() domain.UserRepository              { return s.users }
func (s *Store) Apartments() domain.ApartmentRepository    { return s.apartments }
func (s *Store) Tenants() domain.TenantRepository          { return s.tenants }
func (s *Store) Payments() domain.PaymentRepository        { return s.payments }
func (s *Store) Expenses() domain.ExpenseRepository        { return s.expenses }
func (s *Store) Maintenance() domain.MaintenanceRepository { return s.maintenance }

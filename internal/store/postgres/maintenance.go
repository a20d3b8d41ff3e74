package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/rentdesk/internal/domain"
)

const (
	maintenanceColumns = `id, owner_id, tenant_id, description, cost_cents, status, created_at`
	maintenanceSearch  = `owner_id = $1 AND ($2 = '' OR description ILIKE '%' || $2 || '%' OR status = $2)`
)

type MaintenanceRepo struct {
	pool *pgxpool.Pool
}

func NewMaintenanceRepo(pool *pgxpool.Pool) *MaintenanceRepo {
	return &MaintenanceRepo{pool: pool}
}

func scanMaintenance(row pgx.Row, m *domain.MaintenanceRequest, extra ...any) error {
	dest := []any{&m.ID, &m.OwnerID, &m.TenantID, &m.Description, &m.CostCents, &m.Status, &m.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *MaintenanceRepo) Create(ctx context.Context, m *domain.MaintenanceRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO maintenance_requests (id, owner_id, tenant_id, description, cost_cents, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.OwnerID, m.TenantID, m.Description, m.CostCents, m.Status, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("maintenanceRepo.Create: %w", err)
	}

	return nil
}

func (r *MaintenanceRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	var m domain.MaintenanceRequest

	err := scanMaintenance(r.pool.QueryRow(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.GetByID: %w", err)
	}

	return &m, nil
}

func (r *MaintenanceRepo) Update(ctx context.Context, m *domain.MaintenanceRequest) error {
	err := scanMaintenance(r.pool.QueryRow(ctx,
		`UPDATE maintenance_requests SET tenant_id = $1, description = $2, cost_cents = $3, status = $4
		 WHERE owner_id = $5 AND id = $6
		 RETURNING `+maintenanceColumns,
		m.TenantID, m.Description, m.CostCents, m.Status, m.OwnerID, m.ID,
	), m)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("maintenanceRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("maintenanceRepo.Update: %w", err)
	}

	return nil
}

func (r *MaintenanceRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	var m domain.MaintenanceRequest

	err := scanMaintenance(r.pool.QueryRow(ctx,
		`DELETE FROM maintenance_requests WHERE owner_id = $1 AND id = $2 RETURNING `+maintenanceColumns,
		ownerID, id,
	), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("maintenanceRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.Delete: %w", err)
	}

	return &m, nil
}

func (r *MaintenanceRepo) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[domain.MaintenanceRequest], error) {
	limit, offset := pageBounds(params)

	rows, err := r.pool.Query(ctx,
		`SELECT `+maintenanceColumns+`, COUNT(*) OVER()
		 FROM maintenance_requests WHERE `+maintenanceSearch+`
		 ORDER BY created_at, id
		 LIMIT $3 OFFSET $4`,
		ownerID, params.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.List: %w", err)
	}
	defer rows.Close()

	page := &domain.Page[domain.MaintenanceRequest]{}
	for rows.Next() {
		var m domain.MaintenanceRequest

		err = scanMaintenance(rows, &m, &page.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("maintenanceRepo.List: scan: %w", err)
		}

		page.Items = append(page.Items, &m)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("maintenanceRepo.List: rows: %w", err)
	}

	if len(page.Items) == 0 && offset > 0 {
		page.TotalCount, err = countRows(ctx, r.pool, "maintenance_requests", maintenanceSearch, ownerID, params.Search)
		if err != nil {
			return nil, fmt.Errorf("maintenanceRepo.List: %w", err)
		}
	}

	return page, nil
}

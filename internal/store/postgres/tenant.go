package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/rentdesk/internal/domain"
)

// Tenant rows carry the name of the apartment they reference, falling back to
// the free-text name stored on the tenant.
const (
	tenantSelect = `SELECT t.id, t.owner_id, t.name, t.contact, t.email, t.occupants, t.address, t.rent_cents,
		t.due_date, t.emergency_name, t.emergency_contact, t.apartment_id,
		COALESCE(a.name, t.apartment_name), t.created_at, t.updated_at`
	tenantJoin   = ` LEFT JOIN apartments a ON a.id = t.apartment_id`
	tenantSearch = `owner_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%' OR contact ILIKE '%' || $2 || '%')`
)

type TenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

func scanTenant(row pgx.Row, t *domain.Tenant, extra ...any) error {
	var due *time.Time

	dest := []any{&t.ID, &t.OwnerID, &t.Name, &t.Contact, &t.Email, &t.Occupants, &t.Address, &t.RentCents,
		&due, &t.EmergencyName, &t.EmergencyContact, &t.ApartmentID, &t.ApartmentName, &t.CreatedAt, &t.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	if err != nil {
		return err
	}

	t.DueDate = time.Time{}
	if due != nil {
		t.DueDate = *due
	}
	return nil
}

func nilIfZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tenants (id, owner_id, name, contact, email, occupants, address, rent_cents, due_date,
		     emergency_name, emergency_contact, apartment_id, apartment_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.OwnerID, t.Name, t.Contact, t.Email, t.Occupants, t.Address, t.RentCents, nilIfZero(t.DueDate),
		t.EmergencyName, t.EmergencyContact, t.ApartmentID, t.ApartmentName, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("tenantRepo.Create: %w", err)
	}

	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Tenant, error) {
	var t domain.Tenant

	err := scanTenant(r.pool.QueryRow(ctx,
		tenantSelect+` FROM tenants t`+tenantJoin+` WHERE t.owner_id = $1 AND t.id = $2`,
		ownerID, id,
	), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	err := scanTenant(r.pool.QueryRow(ctx,
		`WITH t AS (
		     UPDATE tenants SET name = $1, contact = $2, email = $3, occupants = $4, address = $5, rent_cents = $6,
		         due_date = $7, emergency_name = $8, emergency_contact = $9, apartment_id = $10, apartment_name = $11,
		         updated_at = now()
		     WHERE owner_id = $12 AND id = $13
		     RETURNING *
		 ) `+tenantSelect+` FROM t`+tenantJoin,
		t.Name, t.Contact, t.Email, t.Occupants, t.Address, t.RentCents,
		nilIfZero(t.DueDate), t.EmergencyName, t.EmergencyContact, t.ApartmentID, t.ApartmentName,
		t.OwnerID, t.ID,
	), t)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("tenantRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("tenantRepo.Update: %w", err)
	}

	return nil
}

func (r *TenantRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Tenant, error) {
	var t domain.Tenant

	err := scanTenant(r.pool.QueryRow(ctx,
		`WITH t AS (
		     DELETE FROM tenants WHERE owner_id = $1 AND id = $2 RETURNING *
		 ) `+tenantSelect+` FROM t`+tenantJoin,
		ownerID, id,
	), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenantRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.Delete: %w", err)
	}

	return &t, nil
}

// List orders tenants by due date, undated tenants first.
func (r *TenantRepo) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[domain.Tenant], error) {
	limit, offset := pageBounds(params)

	rows, err := r.pool.Query(ctx,
		tenantSelect+`, COUNT(*) OVER()
		 FROM (SELECT * FROM tenants WHERE `+tenantSearch+`) t`+tenantJoin+`
		 ORDER BY t.due_date ASC NULLS FIRST, t.created_at, t.id
		 LIMIT $3 OFFSET $4`,
		ownerID, params.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.List: %w", err)
	}
	defer rows.Close()

	page := &domain.Page[domain.Tenant]{}
	for rows.Next() {
		var t domain.Tenant

		err = scanTenant(rows, &t, &page.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("tenantRepo.List: scan: %w", err)
		}

		page.Items = append(page.Items, &t)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("tenantRepo.List: rows: %w", err)
	}

	if len(page.Items) == 0 && offset > 0 {
		page.TotalCount, err = countRows(ctx, r.pool, "tenants", tenantSearch, ownerID, params.Search)
		if err != nil {
			return nil, fmt.Errorf("tenantRepo.List: %w", err)
		}
	}

	return page, nil
}

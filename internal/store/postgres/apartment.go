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
	apartmentColumns = `id, owner_id, name, type, rent_amount_cents, status, address, created_at, updated_at`
	apartmentSearch  = `owner_id = $1 AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR address ILIKE '%' || $2 || '%')`
)

type ApartmentRepo struct {
	pool *pgxpool.Pool
}

func NewApartmentRepo(pool *pgxpool.Pool) *ApartmentRepo {
	return &ApartmentRepo{pool: pool}
}

func scanApartment(row pgx.Row, a *domain.Apartment, extra ...any) error {
	dest := []any{&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.RentAmountCents, &a.Status, &a.Address, &a.CreatedAt, &a.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *ApartmentRepo) Create(ctx context.Context, a *domain.Apartment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO apartments (id, owner_id, name, type, rent_amount_cents, status, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.OwnerID, a.Name, a.Type, a.RentAmountCents, a.Status, a.Address, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("apartmentRepo.Create: %w", err)
	}

	return nil
}

func (r *ApartmentRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Apartment, error) {
	var a domain.Apartment

	err := scanApartment(r.pool.QueryRow(ctx,
		`SELECT `+apartmentColumns+` FROM apartments WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apartmentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("apartmentRepo.GetByID: %w", err)
	}

	return &a, nil
}

// Update writes a and reloads it with the stored timestamps.
func (r *ApartmentRepo) Update(ctx context.Context, a *domain.Apartment) error {
	err := scanApartment(r.pool.QueryRow(ctx,
		`UPDATE apartments SET name = $1, type = $2, rent_amount_cents = $3, status = $4, address = $5, updated_at = now()
		 WHERE owner_id = $6 AND id = $7
		 RETURNING `+apartmentColumns,
		a.Name, a.Type, a.RentAmountCents, a.Status, a.Address, a.OwnerID, a.ID,
	), a)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("apartmentRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("apartmentRepo.Update: %w", err)
	}

	return nil
}

func (r *ApartmentRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Apartment, error) {
	var a domain.Apartment

	err := scanApartment(r.pool.QueryRow(ctx,
		`DELETE FROM apartments WHERE owner_id = $1 AND id = $2 RETURNING `+apartmentColumns,
		ownerID, id,
	), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apartmentRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("apartmentRepo.Delete: %w", err)
	}

	return &a, nil
}

func (r *ApartmentRepo) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[domain.Apartment], error) {
	limit, offset := pageBounds(params)

	rows, err := r.pool.Query(ctx,
		`SELECT `+apartmentColumns+`, COUNT(*) OVER()
		 FROM apartments
		 WHERE `+apartmentSearch+`
		 ORDER BY created_at, id
		 LIMIT $3 OFFSET $4`,
		ownerID, params.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("apartmentRepo.List: %w", err)
	}
	defer rows.Close()

	page := &domain.Page[domain.Apartment]{}
	for rows.Next() {
		var a domain.Apartment

		err = scanApartment(rows, &a, &page.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("apartmentRepo.List: scan: %w", err)
		}

		page.Items = append(page.Items, &a)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("apartmentRepo.List: rows: %w", err)
	}

	if len(page.Items) == 0 && offset > 0 {
		page.TotalCount, err = countRows(ctx, r.pool, "apartments", apartmentSearch, ownerID, params.Search)
		if err != nil {
			return nil, fmt.Errorf("apartmentRepo.List: %w", err)
		}
	}

	return page, nil
}

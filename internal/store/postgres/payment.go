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
	paymentSelect = `SELECT p.id, p.owner_id, p.tenant_id, COALESCE(tn.name, ''), p.amount_cents,
		p.date_from, p.date_to, p.status, p.created_at`
	paymentJoin   = ` LEFT JOIN tenants tn ON tn.id = p.tenant_id`
	paymentSearch = `owner_id = $1 AND ($2 = '' OR tenant_id IN (SELECT id FROM tenants WHERE name ILIKE '%' || $2 || '%'))`
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func scanPayment(row pgx.Row, p *domain.Payment, extra ...any) error {
	dest := []any{&p.ID, &p.OwnerID, &p.TenantID, &p.TenantName, &p.AmountCents,
		&p.DateFrom, &p.DateTo, &p.Status, &p.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (id, owner_id, tenant_id, amount_cents, date_from, date_to, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.OwnerID, p.TenantID, p.AmountCents, p.DateFrom, p.DateTo, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("paymentRepo.Create: %w", err)
	}

	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment

	err := scanPayment(r.pool.QueryRow(ctx,
		paymentSelect+` FROM payments p`+paymentJoin+` WHERE p.owner_id = $1 AND p.id = $2`,
		ownerID, id,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	err := scanPayment(r.pool.QueryRow(ctx,
		`WITH p AS (
		     UPDATE payments SET tenant_id = $1, amount_cents = $2, date_from = $3, date_to = $4, status = $5
		     WHERE owner_id = $6 AND id = $7
		     RETURNING *
		 ) `+paymentSelect+` FROM p`+paymentJoin,
		p.TenantID, p.AmountCents, p.DateFrom, p.DateTo, p.Status, p.OwnerID, p.ID,
	), p)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("paymentRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("paymentRepo.Update: %w", err)
	}

	return nil
}

func (r *PaymentRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Payment, error) {
	var p domain.Payment

	err := scanPayment(r.pool.QueryRow(ctx,
		`WITH p AS (
		     DELETE FROM payments WHERE owner_id = $1 AND id = $2 RETURNING *
		 ) `+paymentSelect+` FROM p`+paymentJoin,
		ownerID, id,
	), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("paymentRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.Delete: %w", err)
	}

	return &p, nil
}

func (r *PaymentRepo) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[domain.Payment], error) {
	limit, offset := pageBounds(params)

	rows, err := r.pool.Query(ctx,
		paymentSelect+`, COUNT(*) OVER()
		 FROM (SELECT * FROM payments WHERE `+paymentSearch+`) p`+paymentJoin+`
		 ORDER BY p.created_at, p.id
		 LIMIT $3 OFFSET $4`,
		ownerID, params.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.List: %w", err)
	}
	defer rows.Close()

	page := &domain.Page[domain.Payment]{}
	for rows.Next() {
		var p domain.Payment

		err = scanPayment(rows, &p, &page.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("paymentRepo.List: scan: %w", err)
		}

		page.Items = append(page.Items, &p)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.List: rows: %w", err)
	}

	if len(page.Items) == 0 && offset > 0 {
		page.TotalCount, err = countRows(ctx, r.pool, "payments", paymentSearch, ownerID, params.Search)
		if err != nil {
			return nil, fmt.Errorf("paymentRepo.List: %w", err)
		}
	}

	return page, nil
}

// ListByTenant returns every payment of one tenant, oldest coverage first.
func (r *PaymentRepo) ListByTenant(ctx context.Context, ownerID, tenantID uuid.UUID) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx,
		paymentSelect+` FROM payments p`+paymentJoin+`
		 WHERE p.owner_id = $1 AND p.tenant_id = $2
		 ORDER BY p.date_from, p.id`,
		ownerID, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByTenant: %w", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment

		err = scanPayment(rows, &p)
		if err != nil {
			return nil, fmt.Errorf("paymentRepo.ListByTenant: scan: %w", err)
		}

		payments = append(payments, &p)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByTenant: rows: %w", err)
	}

	return payments, nil
}

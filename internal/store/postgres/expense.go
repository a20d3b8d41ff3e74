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
	expenseColumns = `id, owner_id, description, amount_cents, date, created_at`
	expenseSearch  = `owner_id = $1 AND ($2 = '' OR description ILIKE '%' || $2 || '%')`
)

type ExpenseRepo struct {
	pool *pgxpool.Pool
}

func NewExpenseRepo(pool *pgxpool.Pool) *ExpenseRepo {
	return &ExpenseRepo{pool: pool}
}

func scanExpense(row pgx.Row, e *domain.Expense, extra ...any) error {
	dest := []any{&e.ID, &e.OwnerID, &e.Description, &e.AmountCents, &e.Date, &e.CreatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *ExpenseRepo) Create(ctx context.Context, e *domain.Expense) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO expenses (id, owner_id, description, amount_cents, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.OwnerID, e.Description, e.AmountCents, e.Date, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("expenseRepo.Create: %w", err)
	}

	return nil
}

func (r *ExpenseRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Expense, error) {
	var e domain.Expense

	err := scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expenseRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.GetByID: %w", err)
	}

	return &e, nil
}

func (r *ExpenseRepo) Update(ctx context.Context, e *domain.Expense) error {
	err := scanExpense(r.pool.QueryRow(ctx,
		`UPDATE expenses SET description = $1, amount_cents = $2, date = $3
		 WHERE owner_id = $4 AND id = $5
		 RETURNING `+expenseColumns,
		e.Description, e.AmountCents, e.Date, e.OwnerID, e.ID,
	), e)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("expenseRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("expenseRepo.Update: %w", err)
	}

	return nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Expense, error) {
	var e domain.Expense

	err := scanExpense(r.pool.QueryRow(ctx,
		`DELETE FROM expenses WHERE owner_id = $1 AND id = $2 RETURNING `+expenseColumns,
		ownerID, id,
	), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("expenseRepo.Delete: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.Delete: %w", err)
	}

	return &e, nil
}

// List returns the most recent expenses first.
func (r *ExpenseRepo) List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[domain.Expense], error) {
	limit, offset := pageBounds(params)

	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseColumns+`, COUNT(*) OVER()
		 FROM expenses WHERE `+expenseSearch+`
		 ORDER BY date DESC, created_at DESC, id
		 LIMIT $3 OFFSET $4`,
		ownerID, params.Search, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.List: %w", err)
	}
	defer rows.Close()

	page := &domain.Page[domain.Expense]{}
	for rows.Next() {
		var e domain.Expense

		err = scanExpense(rows, &e, &page.TotalCount)
		if err != nil {
			return nil, fmt.Errorf("expenseRepo.List: scan: %w", err)
		}

		page.Items = append(page.Items, &e)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("expenseRepo.List: rows: %w", err)
	}

	if len(page.Items) == 0 && offset > 0 {
		page.TotalCount, err = countRows(ctx, r.pool, "expenses", expenseSearch, ownerID, params.Search)
		if err != nil {
			return nil, fmt.Errorf("expenseRepo.List: %w", err)
		}
	}

	return page, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/rentdesk/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func pageBounds(p domain.ListParams) (limit, offset int) {
	limit = p.First
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(p.Offset, 0)
	return limit, offset
}

// countRows is the fallback total for a page past the end, where
// COUNT(*) OVER() has no row to ride on.
func countRows(ctx context.Context, pool *pgxpool.Pool, table, where string, args ...any) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE `+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

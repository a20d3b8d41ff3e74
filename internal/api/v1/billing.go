package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/rentdesk/internal/billing"
	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/server/middleware"
)

// listPageSize is the page size used when a handler needs a whole collection.
const listPageSize = 500

type BillingStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Tenant ID"`
	AsOf string    `query:"as_of" format:"date" doc:"Evaluate as of this day instead of today"`
}

type BillingStatusOutput struct {
	Body struct {
		Status  billing.Status `json:"status" enum:"on_time,overdue,incoming_due,upcoming"`
		Label   string         `json:"label" doc:"Human readable status"`
		DueDate time.Time      `json:"due_date" doc:"Due date of the current billing cycle"`
	}
}

type DashboardInput struct {
	AsOf string `query:"as_of" format:"date" doc:"Evaluate as of this day instead of today"`
}

type DashboardOutput struct {
	Body billing.Overview
}

// RegisterBillingRoutes mounts the derived billing views. now supplies the
// current time when a request does not pin one; nil means time.Now.
func RegisterBillingRoutes(api huma.API, store DataStore, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	asOf := func(s string) (time.Time, error) {
		if s == "" {
			return now(), nil
		}
		return parseDate("as_of", s)
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-billing-status",
		Method:      http.MethodGet,
		Path:        "/tenants/{id}/billing-status",
		Summary:     "Resolve a tenant's billing status",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *BillingStatusInput) (*BillingStatusOutput, error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		at, err := asOf(input.AsOf)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		tenant, err := store.Tenants().GetByID(ctx, ownerID, input.ID)
		if err != nil {
			return nil, tenantResource().fail("get", err)
		}

		payments, err := store.Payments().ListByTenant(ctx, ownerID, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list payments", err)
		}

		status := billing.Resolve(*tenant, values(payments), at)

		out := &BillingStatusOutput{}
		out.Body.Status = status
		out.Body.Label = status.String()
		out.Body.DueDate = billing.DueDate(tenant.DueDay(), at)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Dashboard headline counts and tenant table",
		Tags:        []string{"Billing"},
	}, func(ctx context.Context, input *DashboardInput) (*DashboardOutput, error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		at, err := asOf(input.AsOf)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		tenants, err := listAll(ctx, store.Tenants(), ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tenants", err)
		}
		apartments, err := listAll(ctx, store.Apartments(), ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list apartments", err)
		}
		payments, err := listAll(ctx, store.Payments(), ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list payments", err)
		}

		return &DashboardOutput{Body: billing.Summarize(tenants, apartments, payments, at)}, nil
	})
}

type lister[T any] interface {
	List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[T], error)
}

// listAll pages through a whole collection.
func listAll[T any](ctx context.Context, repo lister[T], ownerID uuid.UUID) ([]T, error) {
	var all []T
	for {
		page, err := repo.List(ctx, ownerID, domain.ListParams{First: listPageSize, Offset: len(all)})
		if err != nil {
			return nil, fmt.Errorf("listAll: %w", err)
		}
		all = append(all, values(page.Items)...)
		if len(page.Items) == 0 || len(all) >= page.TotalCount {
			return all, nil
		}
	}
}

func values[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}

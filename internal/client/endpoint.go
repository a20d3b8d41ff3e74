package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gosuda/rentdesk/internal/billing"
	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/report"
)

// Endpoint is the CRUD surface of one collection.
type Endpoint[T any] struct {
	c    *Client
	name string
}

// NewEndpoint binds the collection name, e.g. "tenants", to record type T.
func NewEndpoint[T any](c *Client, name string) *Endpoint[T] {
	return &Endpoint[T]{c: c, name: name}
}

// Name returns the collection name.
func (e *Endpoint[T]) Name() string { return e.name }

// List calls GET /{name}.
func (e *Endpoint[T]) List(ctx context.Context, params domain.ListParams) (*collection.Collection[T], error) {
	query := url.Values{}
	if params.First > 0 {
		query.Set("first", strconv.Itoa(params.First))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}

	var out collection.Collection[T]
	if err := e.c.do(ctx, http.MethodGet, "/"+e.name, query, nil, &out); err != nil {
		return nil, fmt.Errorf("client.List %s: %w", e.name, err)
	}
	return &out, nil
}

// Get calls GET /{name}/{id}.
func (e *Endpoint[T]) Get(ctx context.Context, id string) (*T, error) {
	return e.record(ctx, "Get", http.MethodGet, id, nil)
}

// Create calls POST /{name} and returns the created record.
func (e *Endpoint[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := e.c.do(ctx, http.MethodPost, "/"+e.name, nil, body, &out); err != nil {
		return nil, fmt.Errorf("client.Create %s: %w", e.name, err)
	}
	return &out, nil
}

// Update calls PUT /{name}/{id} and returns the stored record.
func (e *Endpoint[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	return e.record(ctx, "Update", http.MethodPut, id, body)
}

// Delete calls DELETE /{name}/{id} and returns the removed record.
func (e *Endpoint[T]) Delete(ctx context.Context, id string) (*T, error) {
	return e.record(ctx, "Delete", http.MethodDelete, id, nil)
}

func (e *Endpoint[T]) record(ctx context.Context, op, method, id string, body any) (*T, error) {
	var out T
	if err := e.c.do(ctx, method, "/"+e.name+"/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, fmt.Errorf("client.%s %s: %w", op, e.name, err)
	}
	return &out, nil
}

func (c *Client) Apartments() *Endpoint[domain.Apartment] {
	return NewEndpoint[domain.Apartment](c, domain.CollectionApartments)
}

func (c *Client) Tenants() *Endpoint[domain.Tenant] {
	return NewEndpoint[domain.Tenant](c, domain.CollectionTenants)
}

func (c *Client) Payments() *Endpoint[domain.Payment] {
	return NewEndpoint[domain.Payment](c, domain.CollectionPayments)
}

func (c *Client) Expenses() *Endpoint[domain.Expense] {
	return NewEndpoint[domain.Expense](c, domain.CollectionExpenses)
}

func (c *Client) Maintenance() *Endpoint[domain.MaintenanceRequest] {
	return NewEndpoint[domain.MaintenanceRequest](c, domain.CollectionMaintenance)
}

// BillingStatus is the server's view of one tenant's current cycle.
type BillingStatus struct {
	Status  billing.Status `json:"status"`
	Label   string         `json:"label"`
	DueDate time.Time      `json:"due_date"`
}

// BillingStatus calls GET /tenants/{id}/billing-status.
func (c *Client) BillingStatus(ctx context.Context, tenantID string) (*BillingStatus, error) {
	var out BillingStatus
	if err := c.do(ctx, http.MethodGet, "/tenants/"+url.PathEscape(tenantID)+"/billing-status", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("client.BillingStatus: %w", err)
	}
	return &out, nil
}

// Dashboard calls GET /dashboard.
func (c *Client) Dashboard(ctx context.Context) (*billing.Overview, error) {
	var out billing.Overview
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("client.Dashboard: %w", err)
	}
	return &out, nil
}

// ReportQuery narrows Report. Zero dates leave that side of the range open.
type ReportQuery struct {
	Search string
	From   time.Time
	To     time.Time
}

// Report calls GET /reports.
func (c *Client) Report(ctx context.Context, q ReportQuery) ([]report.Row, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if !q.From.IsZero() {
		query.Set("from", q.From.Format(time.DateOnly))
	}
	if !q.To.IsZero() {
		query.Set("to", q.To.Format(time.DateOnly))
	}

	var out struct {
		Rows []report.Row `json:"rows"`
	}
	if err := c.do(ctx, http.MethodGet, "/reports", query, nil, &out); err != nil {
		return nil, fmt.Errorf("client.Report: %w", err)
	}
	return out.Rows, nil
}

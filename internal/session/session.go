package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gosuda/rentdesk/internal/billing"
	"github.com/gosuda/rentdesk/internal/client"
	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/domain"
)

// fetchPageSize is the page size LoadDashboard pages through collections with.
const fetchPageSize = 500

// Session holds every collection of one signed-in user for the lifetime of
// the session.
type Session struct {
	Apartments  *Resource[domain.Apartment]
	Tenants     *Resource[domain.Tenant]
	Payments    *Resource[domain.Payment]
	Expenses    *Resource[domain.Expense]
	Maintenance *Resource[domain.MaintenanceRequest]

	client *client.Client
	logger zerolog.Logger
}

// New builds a session on c. opts apply to every resource's synchronizer.
func New(c *client.Client, logger zerolog.Logger, opts ...collection.Option) *Session {
	return &Session{
		Apartments:  NewResource(c.Apartments(), func(a domain.Apartment) string { return a.ID.String() }, logger, opts...),
		Tenants:     NewResource(c.Tenants(), func(t domain.Tenant) string { return t.ID.String() }, logger, opts...),
		Payments:    NewResource(c.Payments(), func(p domain.Payment) string { return p.ID.String() }, logger, opts...),
		Expenses:    NewResource(c.Expenses(), func(e domain.Expense) string { return e.ID.String() }, logger, opts...),
		Maintenance: NewResource(c.Maintenance(), func(m domain.MaintenanceRequest) string { return m.ID.String() }, logger, opts...),
		client:      c,
		logger:      logger,
	}
}

// eventSink is the part of a Resource that consumes remote events.
type eventSink interface {
	Name() string
	ApplyEvent(ev collection.MutationEvent) error
}

func (s *Session) sinks() []eventSink {
	return []eventSink{s.Apartments, s.Tenants, s.Payments, s.Expenses, s.Maintenance}
}

// Apply routes a remote event to the resource of its collection.
func (s *Session) Apply(ev collection.MutationEvent) error {
	for _, sink := range s.sinks() {
		if sink.Name() == ev.Collection {
			return sink.ApplyEvent(ev)
		}
	}
	return fmt.Errorf("session.Apply: unknown collection %q", ev.Collection)
}

// Watch applies the server's mutation feeds of all collections until ctx is
// done or a feed fails.
func (s *Session) Watch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range s.sinks() {
		g.Go(func() error {
			return s.client.Watch(ctx, sink.Name(), func(ev collection.MutationEvent) error {
				if err := sink.ApplyEvent(ev); err != nil {
					// A bad event must not end the feed; the next fetch heals the cache.
					s.logger.Warn().Err(err).Str("collection", sink.Name()).Msg("skip mutation event")
				}
				return nil
			})
		})
	}
	return g.Wait()
}

// LoadDashboard fetches tenants, apartments and payments concurrently,
// caching every page, and summarises them as of now.
func (s *Session) LoadDashboard(ctx context.Context, now time.Time) (billing.Overview, error) {
	var (
		tenants    []domain.Tenant
		apartments []domain.Apartment
		payments   []domain.Payment
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tenants, err = fetchAll(ctx, s.Tenants)
		return err
	})
	g.Go(func() (err error) {
		apartments, err = fetchAll(ctx, s.Apartments)
		return err
	})
	g.Go(func() (err error) {
		payments, err = fetchAll(ctx, s.Payments)
		return err
	})
	if err := g.Wait(); err != nil {
		return billing.Overview{}, fmt.Errorf("session.LoadDashboard: %w", err)
	}

	ov := billing.Summarize(tenants, apartments, payments, now)
	s.logger.Debug().
		Int("tenants", ov.TotalTenants).
		Int("overdue", ov.Overdue).
		Int("incoming_due", ov.IncomingDue).
		Msg("dashboard loaded")
	return ov, nil
}

// fetchAll pages through a whole collection.
func fetchAll[T any](ctx context.Context, r *Resource[T]) ([]T, error) {
	var all []T
	for {
		_, page, err := r.Fetch(ctx, domain.ListParams{First: fetchPageSize, Offset: len(all)})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Nodes()...)
		if len(page.Edges) == 0 || !page.PageInfo.HasNextPage {
			return all, nil
		}
	}
}

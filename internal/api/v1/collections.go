package v1

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/server/middleware"
	redisstore "github.com/gosuda/rentdesk/internal/store/redis"
)

// Every domain repository has this shape for its own record type.
type repository[T any] interface {
	Create(ctx context.Context, rec *T) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*T, error)
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*T, error)
	List(ctx context.Context, ownerID uuid.UUID, params domain.ListParams) (*domain.Page[T], error)
}

// resource describes one collection of records of type T, written with
// request bodies of type B.
type resource[T, B any] struct {
	name string // collection name and path segment
	noun string // singular, for operation IDs and messages
	tag  string
	repo func(DataStore) repository[T]
	id   func(*T) uuid.UUID

	// newRecord returns an empty record owned by ownerID.
	newRecord func(ownerID uuid.UUID, now time.Time) *T
	// apply copies body onto rec. Errors wrapping domain.ErrInvalidInput
	// are reported as 422.
	apply func(body *B, rec *T) error
	// check validates references to other records; nil skips it.
	check func(ctx context.Context, store DataStore, ownerID uuid.UUID, rec *T) error
}

type CreateInput[B any] struct {
	Body B
}

type ListInput struct {
	First  int    `query:"first" minimum:"0" maximum:"500" doc:"Page size, 0 for the default"`
	Offset int    `query:"offset" minimum:"0" doc:"Number of records to skip"`
	After  string `query:"after" doc:"Cursor of the last edge already seen; takes precedence over offset"`
	Search string `query:"search" maxLength:"255" doc:"Case-insensitive substring filter"`
}

type RecordInput struct {
	ID uuid.UUID `path:"id" doc:"Record ID"`
}

type UpdateInput[B any] struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body B
}

type RecordOutput[T any] struct {
	Body *T
}

type ListOutput[T any] struct {
	Body *collection.Collection[T]
}

// RegisterCollectionRoutes mounts create, list, get, update and delete for
// every collection. Successful mutations are announced on the owner's
// collection channel through events; events and metrics may be nil.
func RegisterCollectionRoutes(api huma.API, store DataStore, events Publisher, metrics MutationRecorder) {
	ann := &announcer{events: events, metrics: metrics}

	registerResource(api, store, ann, apartmentResource())
	registerResource(api, store, ann, tenantResource())
	registerResource(api, store, ann, paymentResource())
	registerResource(api, store, ann, expenseResource())
	registerResource(api, store, ann, maintenanceResource())
}

func registerResource[T, B any](api huma.API, store DataStore, ann *announcer, res resource[T, B]) {
	path := "/" + res.name
	itemPath := path + "/{id}"

	huma.Register(api, huma.Operation{
		OperationID: "create-" + res.noun,
		Method:      http.MethodPost,
		Path:        path,
		Summary:     "Create a new " + res.noun,
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *CreateInput[B]) (*RecordOutput[T], error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		rec := res.newRecord(ownerID, time.Now().UTC())
		if err := res.apply(&input.Body, rec); err != nil {
			return nil, res.fail("create", err)
		}
		if res.check != nil {
			if err := res.check(ctx, store, ownerID, rec); err != nil {
				return nil, res.fail("create", err)
			}
		}

		repo := res.repo(store)
		if err := repo.Create(ctx, rec); err != nil {
			return nil, res.fail("create", err)
		}

		// Reload so joined columns are part of the returned record.
		created, err := repo.GetByID(ctx, ownerID, res.id(rec))
		if err != nil {
			return nil, res.fail("load created", err)
		}

		ann.announce(ctx, ownerID, res.name, collection.OpInsert, res.id(created), created)
		return &RecordOutput[T]{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-" + res.name,
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "List " + res.name,
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *ListInput) (*ListOutput[T], error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		params, err := input.params()
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		page, err := res.repo(store).List(ctx, ownerID, params)
		if err != nil {
			return nil, res.fail("list", err)
		}

		return &ListOutput[T]{Body: toCollection(page, params.Offset, res.id)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + res.noun,
		Method:      http.MethodGet,
		Path:        itemPath,
		Summary:     "Get " + res.noun + " by ID",
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *RecordInput) (*RecordOutput[T], error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		rec, err := res.repo(store).GetByID(ctx, ownerID, input.ID)
		if err != nil {
			return nil, res.fail("get", err)
		}

		return &RecordOutput[T]{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + res.noun,
		Method:      http.MethodPut,
		Path:        itemPath,
		Summary:     "Replace " + res.noun,
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *UpdateInput[B]) (*RecordOutput[T], error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		repo := res.repo(store)
		rec, err := repo.GetByID(ctx, ownerID, input.ID)
		if err != nil {
			return nil, res.fail("get", err)
		}

		if err = res.apply(&input.Body, rec); err != nil {
			return nil, res.fail("update", err)
		}
		if res.check != nil {
			if err = res.check(ctx, store, ownerID, rec); err != nil {
				return nil, res.fail("update", err)
			}
		}

		// Update scans the stored row back into rec.
		if err = repo.Update(ctx, rec); err != nil {
			return nil, res.fail("update", err)
		}

		ann.announce(ctx, ownerID, res.name, collection.OpUpdate, res.id(rec), rec)
		return &RecordOutput[T]{Body: rec}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-" + res.noun,
		Method:      http.MethodDelete,
		Path:        itemPath,
		Summary:     "Delete " + res.noun,
		Description: "Returns the removed record.",
		Tags:        []string{res.tag},
	}, func(ctx context.Context, input *RecordInput) (*RecordOutput[T], error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		removed, err := res.repo(store).Delete(ctx, ownerID, input.ID)
		if err != nil {
			return nil, res.fail("delete", err)
		}

		ann.announce(ctx, ownerID, res.name, collection.OpDelete, input.ID, removed)
		return &RecordOutput[T]{Body: removed}, nil
	})
}

// fail maps repository and validation errors onto HTTP errors.
func (res resource[T, B]) fail(action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(res.noun + " not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(res.noun + " conflicts with an existing record")
	default:
		return huma.Error500InternalServerError("failed to "+action+" "+res.noun, err)
	}
}

func (in *ListInput) params() (domain.ListParams, error) {
	p := domain.ListParams{First: in.First, Offset: in.Offset, Search: in.Search}
	if in.After != "" {
		n, err := decodeCursor(in.After)
		if err != nil {
			return p, err
		}
		p.Offset = n + 1
	}
	return p, nil
}

func toCollection[T any](page *domain.Page[T], offset int, id func(*T) uuid.UUID) *collection.Collection[T] {
	c := &collection.Collection[T]{
		Edges:      make([]collection.Edge[T], 0, len(page.Items)),
		TotalCount: page.TotalCount,
	}
	for _, item := range page.Items {
		c.Edges = append(c.Edges, collection.Edge[T]{ID: id(item).String(), Node: *item})
	}

	c.PageInfo.HasPreviousPage = offset > 0
	c.PageInfo.HasNextPage = offset+len(page.Items) < page.TotalCount
	if n := len(page.Items); n > 0 {
		start, end := encodeCursor(offset), encodeCursor(offset+n-1)
		c.PageInfo.StartCursor = &start
		c.PageInfo.EndCursor = &end
	}
	return c
}

// Cursors are opaque to clients: the base64 encoded zero-based position of
// an edge in the filtered collection.
const cursorPrefix = "offset:"

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	s, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	return n, nil
}

// announcer publishes committed mutations and counts them.
type announcer struct {
	events  Publisher
	metrics MutationRecorder
}

// announce never fails the request: the mutation is already committed, and
// watchers that miss an event catch up on their next fetch.
func (a *announcer) announce(ctx context.Context, ownerID uuid.UUID, name string, op collection.Op, id uuid.UUID, rec any) {
	if a.metrics != nil {
		a.metrics.RecordMutation(name, string(op))
	}
	if a.events == nil {
		return
	}

	ev, err := collection.NewMutationEvent(name, op, id.String(), rec)
	if err != nil {
		log.Warn().Err(err).Str("collection", name).Msg("encode mutation event")
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("collection", name).Msg("encode mutation event")
		return
	}

	channel := redisstore.CollectionChannel(ownerID, name)
	if err = a.events.Publish(context.WithoutCancel(ctx), channel, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Str("op", string(op)).Msg("publish mutation event")
	}
}

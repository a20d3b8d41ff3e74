package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/rentdesk/internal/client"
	"github.com/gosuda/rentdesk/internal/collection"
	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/report"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestEndpoint_List(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tenants", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("first"))
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		assert.Equal(t, "ma", r.URL.Query().Get("search"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"edges":      []map[string]any{{"id": "t1", "node": map[string]any{"name": "Maria"}}},
			"totalCount": 41,
			"pageInfo":   map[string]any{"hasNextPage": false, "hasPreviousPage": true},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL, "tok")
	got, err := c.Tenants().List(t.Context(), domain.ListParams{First: 20, Offset: 40, Search: "ma"})
	require.NoError(t, err)

	assert.Equal(t, 41, got.TotalCount)
	require.Len(t, got.Edges, 1)
	assert.Equal(t, "t1", got.Edges[0].ID)
	assert.Equal(t, "Maria", got.Edges[0].Node.Name)
	assert.True(t, got.PageInfo.HasPreviousPage)
}

func TestEndpoint_Mutations(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name       string
		wantMethod string
		wantPath   string
		wantBody   bool
		call       func(ctx context.Context, e *client.Endpoint[domain.Expense]) (*domain.Expense, error)
	}{
		{
			name:       "create",
			wantMethod: http.MethodPost,
			wantPath:   "/api/v1/expenses",
			wantBody:   true,
			call: func(ctx context.Context, e *client.Endpoint[domain.Expense]) (*domain.Expense, error) {
				return e.Create(ctx, map[string]any{"description": "paint"})
			},
		},
		{
			name:       "get",
			wantMethod: http.MethodGet,
			wantPath:   "/api/v1/expenses/" + id.String(),
			call: func(ctx context.Context, e *client.Endpoint[domain.Expense]) (*domain.Expense, error) {
				return e.Get(ctx, id.String())
			},
		},
		{
			name:       "update",
			wantMethod: http.MethodPut,
			wantPath:   "/api/v1/expenses/" + id.String(),
			wantBody:   true,
			call: func(ctx context.Context, e *client.Endpoint[domain.Expense]) (*domain.Expense, error) {
				return e.Update(ctx, id.String(), map[string]any{"description": "paint"})
			},
		},
		{
			name:       "delete",
			wantMethod: http.MethodDelete,
			wantPath:   "/api/v1/expenses/" + id.String(),
			call: func(ctx context.Context, e *client.Endpoint[domain.Expense]) (*domain.Expense, error) {
				return e.Delete(ctx, id.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantMethod, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)

				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				if tt.wantBody {
					assert.JSONEq(t, `{"description":"paint"}`, string(body))
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				} else {
					assert.Empty(t, body)
				}

				writeJSON(t, w, http.StatusOK, domain.Expense{ID: id, Description: "paint", AmountCents: 1500})
			}))
			defer srv.Close()

			got, err := tt.call(t.Context(), client.New(srv.URL, "tok").Expenses())
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, int64(1500), got.AmountCents)
		})
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	t.Run("problem_json", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
				"title":  "Unprocessable Entity",
				"status": 422,
				"detail": "payment: date_to before date_from",
			})
		}))
		defer srv.Close()

		_, err := client.New(srv.URL, "tok").Payments().Create(t.Context(), map[string]any{})
		require.Error(t, err)

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
		assert.Equal(t, "payment: date_to before date_from", apiErr.Detail)
		assert.False(t, client.IsNotFound(err))
	})

	t.Run("plain_text_body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := client.New(srv.URL, "tok").Tenants().Get(t.Context(), "x")
		require.Error(t, err)
		assert.True(t, client.IsNotFound(err))
		assert.Contains(t, err.Error(), "404")
	})
}

func TestLogin_SetsToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "fresh", "refresh_token": "r"})
		case "/api/v1/dashboard":
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, map[string]any{"total_tenants": 2})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL+"/", "")
	require.NoError(t, c.Login(t.Context(), "a@example.com", "secret"))

	ov, err := c.Dashboard(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, ov.TotalTenants)
}

func TestWatch(t *testing.T) {
	t.Parallel()

	events := []collection.MutationEvent{
		{Collection: "tenants", Op: collection.OpInsert, ID: "a", Record: json.RawMessage(`{"id":"a"}`)},
		{Collection: "tenants", Op: collection.OpDelete, ID: "b", Record: json.RawMessage(`{"id":"b"}`)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/collections/tenants", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := websocket.Accept(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.CloseNow()

		for _, ev := range events {
			b, _ := json.Marshal(ev)
			if err := conn.Write(r.Context(), websocket.MessageText, b); err != nil {
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	var got []collection.MutationEvent
	err := client.New(srv.URL, "tok").Watch(ctx, "tenants", func(ev collection.MutationEvent) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, collection.OpInsert, got[0].Op)
	assert.Equal(t, "b", got[1].ID)
}

func TestWatch_CallbackErrorStops(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.CloseNow()

		_ = conn.Write(r.Context(), websocket.MessageText, []byte(`{"collection":"payments","op":"update","id":"p"}`))
		// Wait for the client to hang up.
		_, _, _ = conn.Read(r.Context())
	}))
	defer srv.Close()

	stop := errors.New("stop")
	err := client.New(srv.URL, "tok").Watch(t.Context(), "payments", func(collection.MutationEvent) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestWatch_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := client.New(srv.URL, "").Watch(t.Context(), "tenants", func(collection.MutationEvent) error { return nil })

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestReport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports", r.URL.Path)
		assert.Equal(t, "roof", r.URL.Query().Get("search"))
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("from"))
		assert.False(t, r.URL.Query().Has("to"))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"rows": []map[string]any{{"type": "expense", "name": "Expense", "description": "Roof repair", "amount_cents": 35000}},
		})
	}))
	defer srv.Close()

	rows, err := client.New(srv.URL, "tok").Report(t.Context(), client.ReportQuery{
		Search: "roof",
		From:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, report.KindExpense, rows[0].Kind)
	assert.Equal(t, int64(35000), rows[0].AmountCents)
}

package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/rentdesk/internal/report"
	"github.com/gosuda/rentdesk/internal/server/middleware"
)

type ReportInput struct {
	Search string `query:"search" maxLength:"255" doc:"Case-insensitive match on type, name or description"`
	From   string `query:"from" format:"date" doc:"First day to include"`
	To     string `query:"to" format:"date" doc:"Last day to include"`
}

type ReportOutput struct {
	Body struct {
		Rows []report.Row `json:"rows"`
	}
}

// RegisterReportRoutes mounts the combined payments and expenses report.
func RegisterReportRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/reports",
		Summary:     "Payments and expenses in one filtered list",
		Tags:        []string{"Reports"},
	}, func(ctx context.Context, input *ReportInput) (*ReportOutput, error) {
		ownerID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		filter := report.Filter{Search: input.Search}
		var err error
		if filter.From, err = optionalDate("from", input.From); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if filter.To, err = optionalDate("to", input.To); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
			return nil, huma.Error422UnprocessableEntity("to: before from")
		}

		payments, err := listAll(ctx, store.Payments(), ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list payments", err)
		}
		expenses, err := listAll(ctx, store.Expenses(), ownerID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list expenses", err)
		}

		out := &ReportOutput{}
		out.Body.Rows = report.Build(payments, expenses, filter)
		return out, nil
	})
}

func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(field, s)
}

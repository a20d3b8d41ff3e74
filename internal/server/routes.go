package server

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/rentdesk/internal/api/v1"
	"github.com/gosuda/rentdesk/internal/api/ws"
	"github.com/gosuda/rentdesk/internal/metrics"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store v1.DataStore, hub *ws.Hub, m *metrics.Metrics) {
	v1.RegisterCollectionRoutes(api, store, hub, m)
	v1.RegisterBillingRoutes(api, store, time.Now)
	v1.RegisterReportRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/collections/{name}", hub.ServeCollection)
}

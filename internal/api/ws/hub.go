package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/rentdesk/internal/domain"
	"github.com/gosuda/rentdesk/internal/server/middleware"
	redisstore "github.com/gosuda/rentdesk/internal/store/redis"
)

// Broker is the pub/sub transport behind the hub.
// *redisstore.PubSub satisfies this interface.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub fans collection mutation events out to websocket clients.
type Hub struct {
	broker Broker
}

// NewHub creates a new WebSocket hub.
func NewHub(broker Broker) *Hub {
	return &Hub{broker: broker}
}

// ServeCollection streams the caller's mutation events for one collection.
// Subscribes to "collection:<userID>:<name>"; every message is a JSON
// encoded collection.MutationEvent, forwarded verbatim.
func (h *Hub) ServeCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteProblem(w, http.StatusUnauthorized, "missing user")
		return
	}

	name := chi.URLParam(r, "name")
	if !domain.ValidCollection(name) {
		middleware.WriteProblem(w, http.StatusNotFound, "unknown collection "+name)
		return
	}

	ctx := r.Context()
	messages, cleanup, err := h.broker.Subscribe(ctx, redisstore.CollectionChannel(userID, name))
	if err != nil {
		log.Error().Err(err).Str("collection", name).Msg("websocket subscribe")
		middleware.WriteProblem(w, http.StatusServiceUnavailable, "event feed unavailable")
		return
	}
	defer cleanup()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles their close frames and cancels
	// ctx when they go away.
	ctx = conn.CloseRead(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// Publish sends an event payload to a channel. API handlers use the hub as
// their publisher.
func (h *Hub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := h.broker.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("ws.Hub.Publish: %w", err)
	}
	return nil
}

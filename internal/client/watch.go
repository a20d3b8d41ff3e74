package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/gosuda/rentdesk/internal/collection"
)

// Watch streams the user's mutation events for one collection to fn until
// ctx is done, the server closes the feed, or fn returns an error.
// Cancelling ctx is a normal stop and returns nil.
func (c *Client) Watch(ctx context.Context, name string, fn func(collection.MutationEvent) error) error {
	u := c.baseURL + "/ws/collections/" + name
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.Dial(ctx, u, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil && resp.StatusCode >= 400 {
			return fmt.Errorf("client.Watch %s: %w", name, &APIError{Status: resp.StatusCode})
		}
		return fmt.Errorf("client.Watch %s: %w", name, err)
	}
	defer conn.CloseNow()

	for {
		_, msg, readErr := conn.Read(ctx)
		if readErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.CloseStatus(readErr) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("client.Watch %s: %w", name, readErr)
		}

		var ev collection.MutationEvent
		if err = json.Unmarshal(msg, &ev); err != nil {
			return fmt.Errorf("client.Watch %s: decode event: %w", name, err)
		}
		if err = fn(ev); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "done")
			return err
		}
	}
}

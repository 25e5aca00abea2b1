package http

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/rook-prog/CartoZen/internal/adapters/nats"
	"github.com/rook-prog/CartoZen/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to plan events.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "completed" | "failed"
	PlanID  string `json:"plan_id"` // only relay events for this plan (optional)
}

var wsChannels = map[string]string{
	"completed": natsadapter.SubjectPlanCompleted,
	"failed":    natsadapter.SubjectPlanFailed,
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// plan events from NATS. Clients are subscribed to both channels on connect,
// limited to one plan when the upgrade URL carries ?plan_id=, and may send {"action":"unsubscribe","channel":"failed"} or
// {"action":"subscribe","channel":"completed","plan_id":"..."}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // channel -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(channel, planID string) error {
			s, err := nc.Subscribe(wsChannels[channel], func(msg *nats.Msg) {
				if !relayable(msg.Data, planID) {
					return
				}
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				return err
			}
			subs[channel] = s
			return nil
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream not configured"})
			return
		}
		planID := strings.TrimSpace(c.Query("plan_id"))
		for ch := range wsChannels {
			if err := subscribe(ch, planID); err != nil {
				log.Warn("ws default subscribe", "channel", ch, "error", err)
				return
			}
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if _, ok := wsChannels[m.Channel]; !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				// Resubscribing replaces the plan filter.
				if s, exists := subs[m.Channel]; exists {
					_ = s.Unsubscribe()
					delete(subs, m.Channel)
				}
				if err := subscribe(m.Channel, m.PlanID); err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				_ = writeJSON(map[string]string{"status": "subscribed", "channel": m.Channel, "plan_id": m.PlanID})

			case "unsubscribe":
				if s, exists := subs[m.Channel]; exists {
					_ = s.Unsubscribe()
					delete(subs, m.Channel)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": m.Channel})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Channel})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}

// relayable reports whether an event passes a client's plan filter. An empty
// filter passes everything.
func relayable(data []byte, planID string) bool {
	return planID == "" || eventFor(data, planID)
}

// eventFor reports whether an encoded plan event belongs to planID.
func eventFor(data []byte, planID string) bool {
	var ev struct {
		ID string `json:"id"`
	}
	return json.Unmarshal(data, &ev) == nil && ev.ID == planID
}

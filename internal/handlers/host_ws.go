package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tapfolio/widget-backend/internal/host"
	"github.com/tapfolio/widget-backend/internal/refresh"
	"github.com/tapfolio/widget-backend/internal/store"
)

var (
	hostGatewayToken string
	hostStore        *store.WidgetStore
)

// InitHostGateway wires the store the host gateway reads from and the
// optional shared token required to connect.
func InitHostGateway(token string, s *store.WidgetStore) {
	hostGatewayToken = token
	hostStore = s
}

var hostUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The host is a native extension, not a browser; origin checks don't apply.
		return true
	},
}

// HostClientMessage represents messages from the widget host over WebSocket.
type HostClientMessage struct {
	Type     string `json:"type"` // "watch", "unwatch", "ping"
	WidgetID string `json:"widget_id,omitempty"`
}

// hostPush is what the gateway sends down to the host. The widget payload is
// a freshly-read render snapshot: the refresh signal itself carried no data.
type hostPush struct {
	Type     string               `json:"type"` // "widget_render", "widget_removed", "pong"
	WidgetID string               `json:"widget_id,omitempty"`
	Widget   *host.RenderedWidget `json:"widget,omitempty"`
}

// WidgetHostSocket is the gateway the widget-rendering process connects to.
// The host declares which widget ids it displays via "watch" messages; on
// each refresh signal the gateway re-reads the store and pushes the rendered
// snapshot for the affected ids. A broadcast signal re-renders everything
// the connection watches.
func WidgetHostSocket(w http.ResponseWriter, r *http.Request) {
	if hostGatewayToken != "" && r.URL.Query().Get("token") != hostGatewayToken {
		http.Error(w, "invalid host token", http.StatusUnauthorized)
		return
	}

	conn, err := hostUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		watched = make(map[string]struct{})
		writeMu sync.Mutex
	)

	isWatched := func(widgetID string) bool {
		mu.Lock()
		defer mu.Unlock()
		_, ok := watched[widgetID]
		return ok
	}
	watchedIDs := func() []string {
		mu.Lock()
		defer mu.Unlock()
		ids := make([]string, 0, len(watched))
		for id := range watched {
			ids = append(ids, id)
		}
		return ids
	}

	events, unsubscribe := refresh.Subscribe()
	defer unsubscribe()

	// Writer: turn refresh signals into store reads and render pushes.
	go func() {
		for evt := range events {
			switch evt.Scope {
			case refresh.ScopeWidget:
				if !isWatched(evt.WidgetID) {
					continue
				}
				if err := pushRender(ctx, conn, &writeMu, evt.WidgetID); err != nil {
					return
				}
			case refresh.ScopeAll:
				for _, id := range watchedIDs() {
					if err := pushRender(ctx, conn, &writeMu, id); err != nil {
						return
					}
				}
			}
		}
	}()

	// Reader loop: watch/unwatch bookkeeping and keepalive.
	conn.SetReadLimit(16 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg HostClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "watch":
			if msg.WidgetID == "" {
				continue
			}
			mu.Lock()
			watched[msg.WidgetID] = struct{}{}
			mu.Unlock()
			// Initial paint straight from the store.
			if err := pushRender(ctx, conn, &writeMu, msg.WidgetID); err != nil {
				return
			}
		case "unwatch":
			mu.Lock()
			delete(watched, msg.WidgetID)
			mu.Unlock()
		case "ping":
			writeMu.Lock()
			err := conn.WriteJSON(hostPush{Type: "pong"})
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// pushRender reads the record and sends its render snapshot, or a removal
// notice when the record is gone (an index entry may still dangle; the host
// treats removal as already-deleted).
func pushRender(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, widgetID string) error {
	rec, found, err := hostStore.Get(ctx, widgetID)

	push := hostPush{Type: "widget_removed", WidgetID: widgetID}
	if err != nil {
		// Storage fault: skip this paint, keep the connection.
		log.Printf("host gateway: failed to read widget %s: %v", widgetID, err)
		return nil
	}
	if found {
		view := host.Render(rec)
		push = hostPush{Type: "widget_render", WidgetID: widgetID, Widget: &view}
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	return conn.WriteJSON(push)
}

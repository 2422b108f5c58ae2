// Package refresh carries the one-way signal telling the widget host to
// re-render from current storage. Events name what changed, never the data;
// the host reads the store itself. Delivery is fire-and-forget: no ack, no
// retry, no rollback of the storage write that preceded the signal.
package refresh

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis Pub/Sub channel refresh events travel on.
const Channel = "widget:refresh"

// Event scopes. Selective is the primary level; ScopeAll is the broadcast
// fallback for publishers (or hosts) that cannot address a single widget.
const (
	ScopeWidget = "widget"
	ScopeAll    = "all"
)

// Event is the refresh signal payload. WidgetID is set only for ScopeWidget.
type Event struct {
	Scope    string `json:"scope"`
	WidgetID string `json:"widget_id,omitempty"`
}

// Notifier is the signal surface the bridge talks to.
type Notifier interface {
	RefreshWidget(ctx context.Context, widgetID string) error
	RefreshAll(ctx context.Context) error
}

// RedisNotifier publishes refresh events over Redis Pub/Sub so every app
// instance's host connections hear them, not just the instance that wrote.
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) RefreshWidget(ctx context.Context, widgetID string) error {
	return n.publish(ctx, Event{Scope: ScopeWidget, WidgetID: widgetID})
}

func (n *RedisNotifier) RefreshAll(ctx context.Context) error {
	return n.publish(ctx, Event{Scope: ScopeAll})
}

func (n *RedisNotifier) publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, Channel, data).Err()
}

var subscriberStarted sync.Once

// StartSubscriber ensures a single shared Redis listener per instance,
// fanning received events out to the local host hub.
func StartSubscriber(ctx context.Context, client *redis.Client) {
	subscriberStarted.Do(func() {
		go runSubscriber(ctx, client)
	})
}

func runSubscriber(ctx context.Context, client *redis.Client) {
	if client == nil {
		log.Println("Redis client not initialized; refresh subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, Channel)
			defer pubsub.Close()

			log.Printf("✅ Refresh subscriber started (channel: %s)", Channel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Refresh subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal refresh event: %v", err)
					continue
				}

				FanOut(event)
			}
		}()
	}
}

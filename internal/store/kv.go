// Package store persists widget records and the card→widget index.
//
// The record+index model is implemented once, in WidgetStore, over a small
// KV primitive with one backend per platform: Redis (flat key-value) and
// MongoDB (shared container). The two backends share nothing beyond the
// primitive, so index maintenance and read-path validation are never
// duplicated per platform.
package store

import "context"

// KV is the platform storage primitive. Implementations must treat a missing
// key as (nil, false, nil), never as an error; only a failure of the medium
// itself (connection down, auth, timeout) is an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// slotMirror is implemented by backends that additionally maintain the legacy
// single-slot widgetData payload (the Mongo shared container). Backends
// without the legacy slot simply don't implement it.
type slotMirror interface {
	SetSlot(ctx context.Context, widgetID string, payload []byte) error
	ClearSlot(ctx context.Context, widgetID string) error
}

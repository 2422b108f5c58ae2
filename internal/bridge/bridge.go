// Package bridge is the operation surface the application layer calls to
// create, update, delete and list pinned widgets. It validates payloads at
// the boundary, commits to the store, and then fires the refresh signal —
// in that order, always. The signal is fire-and-forget: once the storage
// write has committed the operation succeeded, whether or not the host ever
// re-renders.
package bridge

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/tapfolio/widget-backend/internal/models"
	"github.com/tapfolio/widget-backend/internal/refresh"
	"github.com/tapfolio/widget-backend/internal/store"
	"github.com/tapfolio/widget-backend/internal/validation"
)

type Bridge struct {
	store    *store.WidgetStore
	notifier refresh.Notifier
}

func New(widgetStore *store.WidgetStore, notifier refresh.Notifier) *Bridge {
	return &Bridge{store: widgetStore, notifier: notifier}
}

// configKeys the create config may carry; anything else is ignored.
var configFlagKeys = []string{"showProfileImage", "showCompanyLogo", "showQRCode"}

// CreateWidget builds a record from cardData merged over configuration
// defaults (size large, colorScheme #1B2B5B), persists it and signals the
// host. Returns the freshly allocated widget id.
func (b *Bridge) CreateWidget(ctx context.Context, cardIndex int, cardData, config map[string]interface{}) (string, error) {
	merged := map[string]interface{}{
		"cardIndex":        cardIndex,
		"name":             "",
		"surname":          "",
		"company":          "",
		"occupation":       "",
		"email":            "",
		"phone":            "",
		"colorScheme":      models.DefaultColorScheme,
		"size":             models.DefaultSize,
		"showProfileImage": true,
		"showCompanyLogo":  true,
		"showQRCode":       true,
	}
	for key, val := range cardData {
		if key == "cardIndex" || key == "widgetId" {
			continue // the cardIndex parameter and the generated id win
		}
		merged[key] = val
	}
	if err := applyConfig(merged, config); err != nil {
		return "", err
	}

	if !validation.IsWidgetData(merged) {
		return "", invalidData("card data is missing required fields or has wrong types")
	}
	// cardData can carry a size of its own; hold it to the same enum domain
	// the update path enforces.
	if size, present := merged["size"].(string); present && !models.ValidSize(size) {
		return "", invalidData("size must be one of small, medium, large, xl")
	}

	rec, err := recordFromMap(merged)
	if err != nil {
		return "", invalidData("card data could not be interpreted as a widget record")
	}
	rec.WidgetID = uuid.NewString()
	rec.CardIndex = cardIndex

	if err := b.store.Save(ctx, rec); err != nil {
		log.Printf("bridge: create failed to persist widget %s: %v", rec.WidgetID, err)
		return "", storageFailure()
	}

	b.signalRefresh(ctx, rec.WidgetID)
	return rec.WidgetID, nil
}

// UpdateWidget persists new data for the widget, then refreshes its
// rendering. The persist always happens before the signal; a host that
// re-reads unchanged storage would observe no change. An id with no existing
// record is treated as an upsert (the store is the source of truth, and the
// host's removal callback may race with an in-flight update).
func (b *Bridge) UpdateWidget(ctx context.Context, widgetID string, data map[string]interface{}) (bool, error) {
	if widgetID == "" {
		return false, invalidData("widget id is required")
	}

	base := map[string]interface{}{}
	existing, found, err := b.store.Get(ctx, widgetID)
	if err != nil {
		log.Printf("bridge: update failed to read widget %s: %v", widgetID, err)
		return false, storageFailure()
	}
	if found {
		base, err = mapFromRecord(existing)
		if err != nil {
			return false, storageFailure()
		}
	} else {
		base["colorScheme"] = models.DefaultColorScheme
		base["size"] = models.DefaultSize
	}

	for key, val := range data {
		if key == "widgetId" {
			continue
		}
		base[key] = val
	}

	if !validation.IsWidgetData(base) {
		return false, invalidData("widget data is missing required fields or has wrong types")
	}
	if size, present := base["size"].(string); present && !models.ValidSize(size) {
		return false, invalidData("size must be one of small, medium, large, xl")
	}

	rec, err := recordFromMap(base)
	if err != nil {
		return false, invalidData("widget data could not be interpreted as a widget record")
	}
	rec.WidgetID = widgetID

	if err := b.store.Save(ctx, rec); err != nil {
		log.Printf("bridge: update failed to persist widget %s: %v", widgetID, err)
		return false, storageFailure()
	}

	b.signalRefresh(ctx, widgetID)
	return true, nil
}

// DeleteWidget removes the record and its index membership, then signals the
// host so the surface clears. Unknown ids succeed (already gone).
func (b *Bridge) DeleteWidget(ctx context.Context, widgetID string) (bool, error) {
	if widgetID == "" {
		return false, invalidData("widget id is required")
	}
	if err := b.store.Delete(ctx, widgetID); err != nil {
		log.Printf("bridge: delete failed for widget %s: %v", widgetID, err)
		return false, storageFailure()
	}
	b.signalRefresh(ctx, widgetID)
	return true, nil
}

// GetActiveWidgets enumerates every persisted record via a full store scan.
func (b *Bridge) GetActiveWidgets(ctx context.Context) ([]models.WidgetRecord, error) {
	records, err := b.store.List(ctx)
	if err != nil {
		log.Printf("bridge: list failed: %v", err)
		return nil, storageFailure()
	}
	return records, nil
}

// signalRefresh emits the selective signal and degrades to broadcast when
// selective delivery fails. Never returned to the caller: the storage write
// already committed.
func (b *Bridge) signalRefresh(ctx context.Context, widgetID string) {
	if err := b.notifier.RefreshWidget(ctx, widgetID); err != nil {
		log.Printf("bridge: selective refresh for widget %s failed, broadcasting: %v", widgetID, err)
		if err := b.notifier.RefreshAll(ctx); err != nil {
			log.Printf("bridge: broadcast refresh failed: %v", err)
		}
	}
}

// applyConfig folds the optional create-time config over the merged record
// map. Unknown keys are ignored; known keys with bad values are rejected
// before anything is persisted.
func applyConfig(merged, config map[string]interface{}) error {
	if config == nil {
		return nil
	}
	if v, present := config["size"]; present {
		size, ok := v.(string)
		if !ok || !models.ValidSize(size) {
			return invalidConfig("size must be one of small, medium, large, xl")
		}
		merged["size"] = size
	}
	if v, present := config["colorScheme"]; present {
		scheme, ok := v.(string)
		if !ok {
			return invalidConfig("colorScheme must be a string")
		}
		merged["colorScheme"] = scheme
	}
	for _, key := range configFlagKeys {
		if v, present := config[key]; present {
			flag, ok := v.(bool)
			if !ok {
				return invalidConfig(key + " must be a boolean")
			}
			merged[key] = flag
		}
	}
	return nil
}

func recordFromMap(m map[string]interface{}) (models.WidgetRecord, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return models.WidgetRecord{}, err
	}
	var rec models.WidgetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.WidgetRecord{}, err
	}
	return rec, nil
}

func mapFromRecord(rec models.WidgetRecord) (map[string]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/tapfolio/widget-backend/internal/models"
	"github.com/tapfolio/widget-backend/internal/validation"
)

const (
	// RecordKeyPrefix is the per-widget record key prefix (widget_<id>).
	RecordKeyPrefix = "widget_"
	// IndexKeyPrefix is the card→widget index key prefix (card_widgets_<cardIndex>).
	IndexKeyPrefix = "card_widgets_"

	// cardShareURLFormat is the payload encoded into the legacy slot's QR code.
	cardShareURLFormat = "https://tapfolio.app/c/%d"
)

// WidgetStore implements the record+index model over a KV backend.
//
// The record write and the index write are two separate KV operations with no
// transaction across them: a crash between the two leaves them out of sync.
// Every read path therefore reconciles instead of assuming consistency —
// index ids without a backing record are dropped and pruned, and scanned
// records missing from their card's bucket are re-indexed.
type WidgetStore struct {
	kv KV
}

func NewWidgetStore(kv KV) *WidgetStore {
	return &WidgetStore{kv: kv}
}

func recordKey(widgetID string) string {
	return RecordKeyPrefix + widgetID
}

func indexKey(cardIndex int) string {
	return IndexKeyPrefix + strconv.Itoa(cardIndex)
}

// Save upserts the record and adds its id to the card's index bucket.
// Saving an identical record twice is observably a no-op.
func (s *WidgetStore) Save(ctx context.Context, rec models.WidgetRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, recordKey(rec.WidgetID), data); err != nil {
		return err
	}
	if err := s.addToIndex(ctx, rec.CardIndex, rec.WidgetID); err != nil {
		return err
	}
	s.mirrorSlot(ctx, rec)
	return nil
}

// Get returns the record for widgetID. Malformed or incomplete persisted
// bytes are treated as absent (fail closed), never surfaced as an error.
// Records persisted before the surname field existed decode with surname "".
func (s *WidgetStore) Get(ctx context.Context, widgetID string) (models.WidgetRecord, bool, error) {
	data, found, err := s.kv.Get(ctx, recordKey(widgetID))
	if err != nil {
		return models.WidgetRecord{}, false, err
	}
	if !found {
		return models.WidgetRecord{}, false, nil
	}
	rec, ok := decodeRecord(data)
	if !ok {
		log.Printf("store: discarding malformed record for widget %s", widgetID)
		return models.WidgetRecord{}, false, nil
	}
	return rec, true, nil
}

// Delete removes the record and its index membership. Deleting an id that was
// never present is a no-op, not an error.
func (s *WidgetStore) Delete(ctx context.Context, widgetID string) error {
	rec, found, err := s.Get(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, recordKey(widgetID)); err != nil {
		return err
	}
	if found {
		if err := s.removeFromIndex(ctx, rec.CardIndex, widgetID); err != nil {
			return err
		}
	}
	if mirror, ok := s.kv.(slotMirror); ok {
		if err := mirror.ClearSlot(ctx, widgetID); err != nil {
			log.Printf("store: failed to clear shared slot for widget %s: %v", widgetID, err)
		}
	}
	return nil
}

// IDsForCard returns the reconciled set of widget ids pinned for cardIndex.
// Dangling ids (no backing record, or a record now belonging to a different
// card) are dropped from the result and pruned from the persisted bucket.
// Returns an empty set, never an error, when nothing is indexed.
func (s *WidgetStore) IDsForCard(ctx context.Context, cardIndex int) ([]string, error) {
	ids, err := s.readIndex(ctx, cardIndex)
	if err != nil {
		return nil, err
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		rec, found, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if found && rec.CardIndex == cardIndex {
			live = append(live, id)
		}
	}

	if len(live) != len(ids) {
		if err := s.writeIndex(ctx, cardIndex, live); err != nil {
			log.Printf("store: failed to prune index for card %d: %v", cardIndex, err)
		}
	}
	return live, nil
}

// List is a genuine full-store scan over every persisted record. Records
// absent from their card's bucket are re-indexed on the way through — they
// are orphans from an interrupted save, not data loss.
func (s *WidgetStore) List(ctx context.Context) ([]models.WidgetRecord, error) {
	keys, err := s.kv.Keys(ctx, RecordKeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]models.WidgetRecord, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, RecordKeyPrefix)
		rec, found, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := s.addToIndex(ctx, rec.CardIndex, rec.WidgetID); err != nil {
			log.Printf("store: failed to re-index widget %s: %v", rec.WidgetID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Reconcile walks every index bucket and prunes ids whose record is gone or
// has moved to another card. Run periodically; the read paths already
// reconcile on their own, this only shrinks the inconsistency window.
func (s *WidgetStore) Reconcile(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx, IndexKeyPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		cardIndex, err := strconv.Atoi(strings.TrimPrefix(key, IndexKeyPrefix))
		if err != nil {
			log.Printf("store: skipping unparseable index key %q", key)
			continue
		}
		if _, err := s.IDsForCard(ctx, cardIndex); err != nil {
			return err
		}
	}
	_, err = s.List(ctx)
	return err
}

// addToIndex appends widgetID to the card's bucket unless already a member.
// Read-modify-write over a single key: concurrent writers can lose an update,
// which the platform primitive permits and the sweep later repairs.
func (s *WidgetStore) addToIndex(ctx context.Context, cardIndex int, widgetID string) error {
	ids, err := s.readIndex(ctx, cardIndex)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == widgetID {
			return nil
		}
	}
	return s.writeIndex(ctx, cardIndex, append(ids, widgetID))
}

func (s *WidgetStore) removeFromIndex(ctx context.Context, cardIndex int, widgetID string) error {
	ids, err := s.readIndex(ctx, cardIndex)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != widgetID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return s.writeIndex(ctx, cardIndex, kept)
}

// readIndex parses the comma-joined bucket, deduping defensively.
func (s *WidgetStore) readIndex(ctx context.Context, cardIndex int) ([]string, error) {
	data, found, err := s.kv.Get(ctx, indexKey(cardIndex))
	if err != nil {
		return nil, err
	}
	if !found || len(data) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var ids []string
	for _, id := range strings.Split(string(data), ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *WidgetStore) writeIndex(ctx context.Context, cardIndex int, ids []string) error {
	if len(ids) == 0 {
		return s.kv.Delete(ctx, indexKey(cardIndex))
	}
	return s.kv.Set(ctx, indexKey(cardIndex), []byte(strings.Join(ids, ",")))
}

// mirrorSlot keeps the legacy single-slot payload in step on backends that
// carry one. Failures are logged, never propagated: the id-keyed record is
// the source of truth.
func (s *WidgetStore) mirrorSlot(ctx context.Context, rec models.WidgetRecord) {
	mirror, ok := s.kv.(slotMirror)
	if !ok {
		return
	}
	payload := models.SharedSlotPayload{
		Name:        rec.Name,
		Surname:     rec.Surname,
		Company:     rec.Company,
		Occupation:  rec.Occupation,
		Email:       rec.Email,
		Phone:       rec.Phone,
		ColorScheme: rec.ColorScheme,
		QRCodeData:  fmt.Sprintf(cardShareURLFormat, rec.CardIndex),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := mirror.SetSlot(ctx, rec.WidgetID, data); err != nil {
		log.Printf("store: failed to mirror shared slot for widget %s: %v", rec.WidgetID, err)
	}
}

// decodeRecord applies the read-path defense: the bytes must both be valid
// JSON and pass the stored-widget shape check before they become a record.
func decodeRecord(data []byte) (models.WidgetRecord, bool) {
	var shape interface{}
	if err := json.Unmarshal(data, &shape); err != nil {
		return models.WidgetRecord{}, false
	}
	if !validation.IsStoredWidget(shape) {
		return models.WidgetRecord{}, false
	}
	var rec models.WidgetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.WidgetRecord{}, false
	}
	return rec, true
}

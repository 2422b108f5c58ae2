package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/widget-backend/internal/models"
)

func testRecord(id string, cardIndex int) models.WidgetRecord {
	return models.WidgetRecord{
		WidgetID:    id,
		CardIndex:   cardIndex,
		Name:        "Ana",
		Surname:     "Marin",
		Company:     "Tapfolio",
		Occupation:  "Designer",
		Email:       "ana@example.com",
		Phone:       "+385911234567",
		ColorScheme: "#1B2B5B",
		Size:        "large",
		ShowQRCode:  true,
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())

	rec := testRecord("w-1", 3)
	require.NoError(t, s.Save(ctx, rec))

	got, found, err := s.Get(ctx, "w-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)
}

func TestGetAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())

	_, found, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveIdempotentIndex(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())

	rec := testRecord("w-1", 3)
	require.NoError(t, s.Save(ctx, rec))
	require.NoError(t, s.Save(ctx, rec))

	ids, err := s.IDsForCard(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-1"}, ids)
}

func TestDeleteCompleteness(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())

	require.NoError(t, s.Save(ctx, testRecord("w-a", 7)))
	require.NoError(t, s.Save(ctx, testRecord("w-b", 7)))

	require.NoError(t, s.Delete(ctx, "w-a"))

	_, found, err := s.Get(ctx, "w-a")
	require.NoError(t, err)
	assert.False(t, found)

	ids, err := s.IDsForCard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-b"}, ids)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())
	assert.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestLegacyRecordWithoutSurname(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	legacy := `{"widgetId":"w-old","cardIndex":2,"name":"Ana","company":"Tapfolio",` +
		`"occupation":"Designer","email":"a@b.c","phone":"123",` +
		`"colorScheme":"#1B2B5B","size":"small"}`
	require.NoError(t, kv.Set(ctx, RecordKeyPrefix+"w-old", []byte(legacy)))

	rec, found, err := s.Get(ctx, "w-old")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "", rec.Surname)
	assert.Equal(t, "small", rec.Size)
}

func TestMalformedRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, kv.Set(ctx, RecordKeyPrefix+"w-bad", []byte(`{not json`)))
	_, found, err := s.Get(ctx, "w-bad")
	require.NoError(t, err)
	assert.False(t, found)

	// Wrong field type fails closed too.
	require.NoError(t, kv.Set(ctx, RecordKeyPrefix+"w-bad2",
		[]byte(`{"widgetId":"w-bad2","cardIndex":"2","name":"x"}`)))
	_, found, err = s.Get(ctx, "w-bad2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDanglingIndexEntryDroppedAndPruned(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, s.Save(ctx, testRecord("w-live", 5)))
	// Simulate a crash between record delete and index remove.
	require.NoError(t, kv.Set(ctx, IndexKeyPrefix+"5", []byte("w-live,w-ghost")))

	ids, err := s.IDsForCard(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-live"}, ids)

	// The persisted bucket was pruned, not just the returned set.
	raw, found, err := kv.Get(ctx, IndexKeyPrefix+"5")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "w-live", string(raw))
}

func TestIndexEntryForRelocatedRecordDropped(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, s.Save(ctx, testRecord("w-1", 9)))
	// Stale bucket from before the widget moved to card 9.
	require.NoError(t, kv.Set(ctx, IndexKeyPrefix+"4", []byte("w-1")))

	ids, err := s.IDsForCard(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.IDsForCard(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-1"}, ids)
}

func TestListReindexesOrphans(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	// Simulate a crash between record write and index add.
	rec := testRecord("w-orphan", 6)
	require.NoError(t, s.Save(ctx, rec))
	require.NoError(t, kv.Delete(ctx, IndexKeyPrefix+"6"))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "w-orphan", records[0].WidgetID)

	ids, err := s.IDsForCard(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-orphan"}, ids)
}

func TestListSkipsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, s.Save(ctx, testRecord("w-ok", 1)))
	require.NoError(t, kv.Set(ctx, RecordKeyPrefix+"w-corrupt", []byte("\xff\xfe")))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "w-ok", records[0].WidgetID)
}

func TestReconcileRepairsBothDirections(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, s.Save(ctx, testRecord("w-1", 3)))
	require.NoError(t, kv.Delete(ctx, IndexKeyPrefix+"3"))               // orphaned record
	require.NoError(t, kv.Set(ctx, IndexKeyPrefix+"8", []byte("ghost"))) // dangling id

	require.NoError(t, s.Reconcile(ctx))

	ids, err := s.IDsForCard(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-1"}, ids)

	_, found, err := kv.Get(ctx, IndexKeyPrefix+"8")
	require.NoError(t, err)
	assert.False(t, found, "empty bucket should be removed")
}

func TestIndexDedupesOnRead(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewWidgetStore(kv)

	require.NoError(t, s.Save(ctx, testRecord("w-1", 2)))
	require.NoError(t, kv.Set(ctx, IndexKeyPrefix+"2", []byte("w-1,w-1, w-1,")))

	ids, err := s.IDsForCard(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"w-1"}, ids)
}

func TestIDsForCardEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewWidgetStore(NewMemoryKV())

	ids, err := s.IDsForCard(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

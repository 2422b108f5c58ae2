package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/widget-backend/internal/models"
	"github.com/tapfolio/widget-backend/internal/store"
)

// fakeNotifier records refresh signals and optionally fails selective
// delivery; onSignal lets a test observe store state at signal time.
type fakeNotifier struct {
	widgetSignals []string
	broadcasts    int
	failSelective bool
	onSignal      func()
}

func (f *fakeNotifier) RefreshWidget(_ context.Context, widgetID string) error {
	if f.onSignal != nil {
		f.onSignal()
	}
	if f.failSelective {
		return errors.New("channel unavailable")
	}
	f.widgetSignals = append(f.widgetSignals, widgetID)
	return nil
}

func (f *fakeNotifier) RefreshAll(_ context.Context) error {
	if f.onSignal != nil {
		f.onSignal()
	}
	f.broadcasts++
	return nil
}

func newTestBridge() (*Bridge, *store.WidgetStore, *fakeNotifier) {
	s := store.NewWidgetStore(store.NewMemoryKV())
	n := &fakeNotifier{}
	return New(s, n), s, n
}

func TestCreateWidgetMinimalCardData(t *testing.T) {
	ctx := context.Background()
	b, s, n := newTestBridge()

	id, err := b.CreateWidget(ctx, 3,
		map[string]interface{}{"name": "Ana"},
		map[string]interface{}{"size": "small"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, found, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "small", rec.Size)
	assert.Equal(t, "Ana", rec.Name)
	assert.Equal(t, 3, rec.CardIndex)
	assert.Equal(t, models.DefaultColorScheme, rec.ColorScheme)

	ids, err := s.IDsForCard(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	assert.Equal(t, []string{id}, n.widgetSignals)
}

func TestCreateWidgetDefaults(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBridge()

	id, err := b.CreateWidget(ctx, 1, map[string]interface{}{"name": "Ana"}, nil)
	require.NoError(t, err)

	rec, _, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSize, rec.Size)
	assert.Equal(t, models.DefaultColorScheme, rec.ColorScheme)
	assert.True(t, rec.ShowQRCode)
}

func TestCreateWidgetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := b.CreateWidget(ctx, 1, map[string]interface{}{"name": "Ana"}, nil)
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate widget id %s", id)
		seen[id] = true
	}
}

func TestCreateWidgetRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBridge()

	_, err := b.CreateWidget(ctx, 3,
		map[string]interface{}{"name": "Ana"},
		map[string]interface{}{"size": "gigantic"})
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, CodeInvalidConfig, bridgeErr.Code)

	// Nothing was persisted.
	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreateWidgetRejectsBadSizeInCardData(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBridge()

	// size smuggled through cardData must meet the same enum domain as
	// config-supplied and update-supplied sizes.
	_, err := b.CreateWidget(ctx, 3,
		map[string]interface{}{"name": "Ana", "size": "gigantic"}, nil)
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, CodeInvalidData, bridgeErr.Code)

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	// A valid cardData size is still honored.
	id, err := b.CreateWidget(ctx, 3,
		map[string]interface{}{"name": "Ana", "size": "medium"}, nil)
	require.NoError(t, err)
	rec, _, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "medium", rec.Size)
}

func TestCreateWidgetRejectsBadCardData(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge()

	_, err := b.CreateWidget(ctx, 3, map[string]interface{}{"name": 42}, nil)
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, CodeInvalidData, bridgeErr.Code)
}

func TestDeleteWidgetScenario(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBridge()

	idA, err := b.CreateWidget(ctx, 7, map[string]interface{}{"name": "A"}, nil)
	require.NoError(t, err)
	idB, err := b.CreateWidget(ctx, 7, map[string]interface{}{"name": "B"}, nil)
	require.NoError(t, err)

	ok, err := b.DeleteWidget(ctx, idA)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := s.IDsForCard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{idB}, ids)

	_, found, err := s.Get(ctx, idA)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteUnknownWidgetSucceeds(t *testing.T) {
	ctx := context.Background()
	b, _, n := newTestBridge()

	ok, err := b.DeleteWidget(ctx, "never-existed")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"never-existed"}, n.widgetSignals)
}

func TestUpdatePersistsBeforeRefresh(t *testing.T) {
	ctx := context.Background()
	b, s, n := newTestBridge()

	id, err := b.CreateWidget(ctx, 2, map[string]interface{}{"name": "Ana"}, nil)
	require.NoError(t, err)

	// Observe the store at the moment the refresh signal fires: the new name
	// must already be durable, or the host would re-render stale data.
	var nameAtSignal string
	n.onSignal = func() {
		rec, _, err := s.Get(ctx, id)
		require.NoError(t, err)
		nameAtSignal = rec.Name
	}

	ok, err := b.UpdateWidget(ctx, id, map[string]interface{}{"name": "Maja"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Maja", nameAtSignal)
}

func TestUpdateMergesOverExisting(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBridge()

	id, err := b.CreateWidget(ctx, 2,
		map[string]interface{}{"name": "Ana", "company": "Tapfolio"},
		map[string]interface{}{"size": "small"})
	require.NoError(t, err)

	_, err = b.UpdateWidget(ctx, id, map[string]interface{}{"occupation": "Founder"})
	require.NoError(t, err)

	rec, _, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec.Name)
	assert.Equal(t, "Tapfolio", rec.Company)
	assert.Equal(t, "Founder", rec.Occupation)
	assert.Equal(t, "small", rec.Size)
}

func TestUpdateRejectsWrongTypes(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge()

	id, err := b.CreateWidget(ctx, 2, map[string]interface{}{"name": "Ana"}, nil)
	require.NoError(t, err)

	_, err = b.UpdateWidget(ctx, id, map[string]interface{}{"cardIndex": "3"})
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.Equal(t, CodeInvalidData, bridgeErr.Code)
}

func TestBroadcastFallbackWhenSelectiveFails(t *testing.T) {
	ctx := context.Background()
	b, _, n := newTestBridge()
	n.failSelective = true

	id, err := b.CreateWidget(ctx, 4, map[string]interface{}{"name": "Ana"}, nil)
	require.NoError(t, err, "a dropped signal must not fail the committed create")
	require.NotEmpty(t, id)
	assert.Equal(t, 1, n.broadcasts)
}

func TestGetActiveWidgetsScansStore(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge()

	_, err := b.CreateWidget(ctx, 1, map[string]interface{}{"name": "A"}, nil)
	require.NoError(t, err)
	_, err = b.CreateWidget(ctx, 2, map[string]interface{}{"name": "B"}, nil)
	require.NoError(t, err)

	records, err := b.GetActiveWidgets(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

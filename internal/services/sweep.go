package services

import (
	"context"
	"log"
	"time"

	"github.com/tapfolio/widget-backend/internal/store"
)

// StartReconcileSweep periodically repairs record↔index drift left behind by
// interrupted saves or deletes (the record write and the index write are not
// atomic). The read paths already reconcile on access; the sweep just keeps
// drift from accumulating on cards nobody reads.
func StartReconcileSweep(intervalMinutes int, widgetStore *store.WidgetStore) {
	go func() {
		ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if err := widgetStore.Reconcile(ctx); err != nil {
				log.Printf("widget reconcile sweep failed: %v", err)
			}
			cancel()
		}
	}()
}

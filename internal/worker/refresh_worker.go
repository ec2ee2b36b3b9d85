package worker

import (
	"context"
	"fmt"
	"log/slog"

	"unitrates/internal/amqp"
	"unitrates/internal/catalog"
)

// RefreshWorker keeps the server's filter catalog in step with the
// dataset. When an import finishes it publishes a reload message; the
// worker drops the cached catalog for that store and loads it again.
type RefreshWorker struct {
	cache   *catalog.Cache
	source  catalog.Source
	storeID string
}

func NewRefreshWorker(cache *catalog.Cache, source catalog.Source, storeID string) *RefreshWorker {
	return &RefreshWorker{
		cache:   cache,
		source:  source,
		storeID: storeID,
	}
}

// HandleReloadMessage processes a single dataset reload message from AMQP.
// Messages for other stores are logged and acknowledged without a reload.
func (w *RefreshWorker) HandleReloadMessage(ctx context.Context, msg *amqp.DatasetReloadMessage) error {
	slog.InfoContext(ctx, "Processing dataset reload message",
		"store_path", msg.StorePath,
		"records", msg.Records)

	if msg.StorePath != "" && msg.StorePath != w.storeID {
		slog.WarnContext(ctx, "Reload message for a different store, ignoring",
			"message_store", msg.StorePath,
			"local_store", w.storeID)
		return nil
	}

	snap, err := w.cache.Refresh(ctx, w.storeID, w.source)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	slog.InfoContext(ctx, "Catalog refreshed",
		"store", w.storeID,
		"years", len(snap.Years),
		"provinces", len(snap.Provinces),
		"cities", len(snap.Cities))

	return nil
}

// Run consumes reload messages until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeDatasetReloads(ctx, func(msg *amqp.DatasetReloadMessage) error {
		return w.HandleReloadMessage(ctx, msg)
	})
}

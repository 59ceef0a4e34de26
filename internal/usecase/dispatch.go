package usecase

import (
	"context"
	"log/slog"

	"food-assist-agent/internal/domain"
)

// StorageSink persists completed assistance requests.
type StorageSink interface {
	InsertRequest(ctx context.Context, rec domain.FulfillmentRecord) error
}

// NotificationSink tells downstream partners a request is ready for delivery.
type NotificationSink interface {
	Notify(ctx context.Context, rec domain.FulfillmentRecord) error
}

// Dispatcher hands a completed record to the storage sink and then, only if
// storage succeeded, to the notification sink. Either sink may fail without
// affecting the reply path: failures are logged and folded into the returned
// stored flag. Single attempt per sink, no retries.
type Dispatcher struct {
	storage  StorageSink
	notifier NotificationSink
}

// NewDispatcher creates a Dispatcher. Both sinks are optional: a nil storage
// sink means every dispatch reports stored=false, a nil notifier skips the
// notification leg.
func NewDispatcher(storage StorageSink, notifier NotificationSink) *Dispatcher {
	return &Dispatcher{storage: storage, notifier: notifier}
}

// Dispatch forwards rec to the sinks and reports whether storage succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, rec domain.FulfillmentRecord) bool {
	stored := false
	switch {
	case d.storage == nil:
		slog.Warn("storage sink not configured, request not persisted",
			"session_id", rec.SessionID)
	default:
		if err := d.storage.InsertRequest(ctx, rec); err != nil {
			slog.Error("storage sink insert failed",
				"session_id", rec.SessionID, "err", err)
		} else {
			stored = true
			slog.Info("assistance request stored",
				"session_id", rec.SessionID,
				"assistance_type", rec.AssistanceType)
		}
	}

	if !stored || d.notifier == nil {
		return stored
	}

	if err := d.notifier.Notify(ctx, rec); err != nil {
		slog.Warn("fulfillment notification failed",
			"session_id", rec.SessionID, "err", err)
	}
	return stored
}

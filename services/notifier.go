package services

import (
	"context"
	"time"

	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

// Notifier receives domain events after they are committed.
type Notifier interface {
	Notify(ctx context.Context, event models.Event) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.Event) error { return nil }

const notifyTimeout = 3 * time.Second

// notify delivers event without letting a notifier failure reach the caller.
func notify(ctx context.Context, n Notifier, event models.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := n.Notify(ctx, event); err != nil {
		metrics.RecordEvent("notifier", "error")
		utils.ErrorLogger.Warnf("Failed to deliver %s event: %v", event.Type, err)
		return
	}
	metrics.RecordEvent("notifier", "ok")
}

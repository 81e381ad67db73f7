package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/tienda/internal/events"
	"github.com/Skotchmaster/tienda/internal/logging"
)

const publishTimeout = 5 * time.Second

// publish never fails the caller; delivery errors are only logged.
func publish(ctx context.Context, p events.Publisher, topic string, key uint, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}

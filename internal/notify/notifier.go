package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier publishes moderation messages to whoever watches the queue.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}

const publishTimeout = 10 * time.Second

// PublishAsync sends message on a background goroutine so the request that
// triggered it is not held up. Failures are logged only.
func PublishAsync(n Notifier, message string) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := n.Publish(ctx, message); err != nil {
			log.Error().Err(err).Msg("failed to publish moderation notification")
		}
	}()
}

// Package notify fans processing outcomes out to operator-facing
// destinations. Delivery runs on its own goroutine so a slow or failing
// destination never stalls the alert pipeline.
package notify

import (
	"context"
	"time"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
)

const (
	queueSize   = 64
	sendTimeout = 10 * time.Second
)

// Hub queues messages and delivers them in order to every destination.
type Hub struct {
	destinations []interfaces.Destination
	queue        chan string
}

func NewHub(destinations ...interfaces.Destination) *Hub {
	return &Hub{
		destinations: destinations,
		queue:        make(chan string, queueSize),
	}
}

// Publish enqueues a message for delivery. When the queue is full the
// message is dropped rather than blocking the caller.
func (h *Hub) Publish(ctx context.Context, text string) {
	select {
	case h.queue <- text:
	default:
		logger.Warn(ctx, "Notification queue full, dropping message", "queued", len(h.queue))
	}
}

// Run delivers queued messages until ctx is cancelled, then drains what is
// already queued before returning.
func (h *Hub) Run(ctx context.Context) {
	logger.Info(ctx, "Notification hub started", "destinations", len(h.destinations))

	for {
		select {
		case text := <-h.queue:
			h.deliver(ctx, text)
		case <-ctx.Done():
			h.drain()
			logger.Info(context.Background(), "Notification hub stopped")
			return
		}
	}
}

func (h *Hub) deliver(ctx context.Context, text string) {
	for _, dest := range h.destinations {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := dest.Send(sendCtx, text)
		cancel()
		if err != nil {
			logger.ErrorWithErr(ctx, "Notification delivery failed", err, "destination", dest.Name())
		}
	}
}

func (h *Hub) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	for {
		select {
		case text := <-h.queue:
			h.deliver(ctx, text)
		default:
			return
		}
	}
}

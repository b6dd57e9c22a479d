package telegram

import (
	"context"

	"signal-copier-bot/internal/interfaces"
)

// Sink adapts the client's broadcast to the notification destination
// contract.
type Sink struct {
	client *Client
}

var _ interfaces.Destination = (*Sink)(nil)

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) Name() string { return "telegram" }

func (s *Sink) Send(ctx context.Context, text string) error {
	return s.client.Broadcast(ctx, text)
}

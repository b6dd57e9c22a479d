package interfaces

import "context"

// Destination is one delivery target for outcome and status messages.
// A failing destination must not prevent delivery to the others.
type Destination interface {
	Name() string
	Send(ctx context.Context, text string) error
}

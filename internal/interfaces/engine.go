package interfaces

import (
	"context"

	"signal-copier-bot/internal/types"
)

type Engine interface {
	Execute(ctx context.Context, sig types.Signal) types.Outcome
}

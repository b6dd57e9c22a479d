package engineobs

import (
	"context"
	"time"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/trace"
	"signal-copier-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Execute(ctx context.Context, sig types.Signal) types.Outcome {
	ctx, span := trace.StartSpan(ctx, "engine.Execute")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting signal execution",
		"symbol", sig.Symbol,
		"action", string(sig.Action),
	)

	outcome := oe.engine.Execute(ctx, sig)

	logger.InfoSkip(ctx, 1, "Signal execution completed",
		"symbol", sig.Symbol,
		"action", string(sig.Action),
		"kind", string(outcome.Kind),
		"ok", outcome.OK,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return outcome
}

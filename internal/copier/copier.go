// Package copier runs inbound alerts through the processing pipeline:
// duplicate suppression, parsing, execution, journaling and notification.
package copier

import (
	"context"
	"errors"
	"fmt"

	"signal-copier-bot/internal/dedup"
	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/notify"
	"signal-copier-bot/internal/parser"
	"signal-copier-bot/internal/tradelog"
	"signal-copier-bot/internal/types"
)

// Pipeline wires the alert stream to the engine. It checks the duplicate
// cache before anything else, so a retransmitted alert is suppressed even
// when its text would not parse.
type Pipeline struct {
	cache  *dedup.Cache
	engine interfaces.Engine
	hub    *notify.Hub
}

func NewPipeline(cache *dedup.Cache, engine interfaces.Engine, hub *notify.Hub) *Pipeline {
	return &Pipeline{cache: cache, engine: engine, hub: hub}
}

// Process runs one raw alert through dedup, parse and execute. Every outcome
// lands in the journal; everything except duplicates is reported to the
// notify chats.
func (p *Pipeline) Process(ctx context.Context, text string) {
	if p.cache.Seen(text) {
		logger.Warn(ctx, "Duplicate alert ignored")
		_ = tradelog.AppendOutcome(tradelog.OutcomeEntry{
			Kind: string(types.OutcomeDuplicate),
			Text: "duplicate alert suppressed",
		})
		return
	}
	p.cache.Mark(text)

	sig, err := parser.Parse(text)
	if err != nil {
		var pe *parser.ParseError
		preview := ""
		if errors.As(err, &pe) {
			preview = pe.Preview
		}
		logger.Warn(ctx, "Could not parse alert", "error", err)
		_ = tradelog.AppendOutcome(tradelog.OutcomeEntry{
			Kind: string(types.OutcomeParseFailure),
			Text: err.Error(),
		})
		p.hub.Publish(ctx, fmt.Sprintf("❌ Could not parse signal from message\nMessage preview:\n%s", preview))
		return
	}

	logger.Signal(ctx, sig.Symbol, string(sig.Action),
		"entry", sig.Entry.String(), "tp1", sig.TP1.String())

	out := p.engine.Execute(ctx, sig)
	_ = tradelog.AppendOutcome(tradelog.OutcomeEntry{
		Kind:   string(out.Kind),
		OK:     out.OK,
		Symbol: sig.Symbol,
		Text:   out.Text,
	})
	p.hub.Publish(ctx, out.Text)
}

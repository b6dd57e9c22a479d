// Package engine is the signal-to-trade decision core: it sizes, gates and
// submits one order per parsed signal and reports every outcome, success or
// failure, as a value. Each execution walks the same path: safety check,
// spread check, sizing, target selection, submission.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/store"
	"signal-copier-bot/internal/tradelog"
	"signal-copier-bot/internal/types"
)

type Engine struct {
	state    *State
	settings *store.Settings
	terminal interfaces.Terminal
	sizer    *sizer
	safety   *safetyMonitor
}

var _ interfaces.Engine = (*Engine)(nil)

func New(settings *store.Settings, state *State, terminal interfaces.Terminal) *Engine {
	return &Engine{
		state:    state,
		settings: settings,
		terminal: terminal,
		sizer:    newSizer(state, terminal),
		safety:   newSafetyMonitor(state, terminal),
	}
}

// CloseAll closes every open position at market, regardless of symbol.
// It returns the number of confirmed closes.
func (e *Engine) CloseAll(ctx context.Context) (int, error) {
	return e.sizer.closeSymbolPositions(ctx, "", "Close all")
}

// Execute runs one signal through the decision pipeline and returns the
// outcome. Failures short-circuit: an inactive engine or a tripped breaker
// produces no terminal traffic beyond the equity read, and a rejected order
// is reported upward, never retried.
func (e *Engine) Execute(ctx context.Context, sig types.Signal) types.Outcome {
	if !e.state.Active() {
		return types.Outcome{Kind: types.OutcomeInactive, Text: "Bot is inactive"}
	}

	view := e.settings.Snapshot()

	tripped, lossPct, err := e.safety.check(ctx, view)
	if err != nil {
		// No equity reading; the breaker cannot trip on missing data.
		logger.ErrorWithErr(ctx, "Safety check could not read account", err, "symbol", sig.Symbol)
	}
	if tripped {
		e.state.Deactivate()
		logger.Risk(ctx, sig.Symbol, "SAFETY_STOP",
			"loss_pct", lossPct.StringFixed(1),
			"limit_pct", view.MaxLossPercent.StringFixed(1),
		)
		return types.Outcome{
			Kind: types.OutcomeSafetyTripped,
			Text: fmt.Sprintf("🚨 SAFETY STOP! Equity loss reached %s%% (limit %s%%). Bot deactivated.",
				lossPct.StringFixed(1), view.MaxLossPercent.StringFixed(1)),
		}
	}

	logger.Debug(ctx, "Executing signal", "symbol", sig.Symbol, "action", string(sig.Action))

	quote, err := e.terminal.Quote(ctx, sig.Symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "No quote for symbol", err, "symbol", sig.Symbol)
		return types.Outcome{
			Kind: types.OutcomeMarketData,
			Text: fmt.Sprintf("No market data available for %s", sig.Symbol),
		}
	}
	info, err := e.terminal.SymbolInfo(ctx, sig.Symbol)
	if err != nil || !info.Point.IsPositive() {
		logger.Error(ctx, "No instrument metadata for symbol", "symbol", sig.Symbol, "error", err)
		return types.Outcome{
			Kind: types.OutcomeMarketData,
			Text: fmt.Sprintf("No market data available for %s", sig.Symbol),
		}
	}

	spread := quote.Ask.Sub(quote.Bid).Div(info.Point)
	logger.Debug(ctx, "Spread checked", "symbol", sig.Symbol, "spread_points", spread.StringFixed(1))
	if spread.GreaterThan(view.MaxSpreadPoints) {
		return types.Outcome{
			Kind: types.OutcomeSpreadTooWide,
			Text: fmt.Sprintf("Spread too wide: %s points (max: %s)",
				spread.StringFixed(1), view.MaxSpreadPoints.StringFixed(1)),
		}
	}

	// Sizing may close opposing positions as a side effect.
	volume := e.sizer.volume(ctx, sig.Symbol, sig.Action, view)

	price := quote.Ask
	if sig.Action == types.ActionSell {
		price = quote.Bid
	}

	slDistance := view.StopLossPoints.Mul(info.Point)
	stopLoss := price.Sub(slDistance)
	if sig.Action == types.ActionSell {
		stopLoss = price.Add(slDistance)
	}

	target, targetLabel := chooseTarget(sig, view.SmartTargets)

	req := types.OrderRequest{
		Symbol:      sig.Symbol,
		Side:        sig.Action,
		Volume:      volume,
		Price:       price,
		StopLoss:    stopLoss,
		TakeProfit:  target,
		Deviation:   types.Deviation,
		Magic:       types.Magic,
		TimeInForce: types.TimeGTC,
		FillPolicy:  types.FillIOC,
		Comment:     "Bot-" + string(sig.Action),
		ClientID:    uuid.NewString(),
	}

	res, err := e.terminal.SendOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order submission failed", err, "symbol", sig.Symbol)
		return types.Outcome{
			Kind: types.OutcomeRejected,
			Text: fmt.Sprintf("Trade failed: %v", err),
		}
	}
	if !res.Done() {
		logger.Warn(ctx, "Order rejected by terminal",
			"symbol", sig.Symbol, "retcode", res.RetCode, "comment", res.Comment)
		return types.Outcome{
			Kind: types.OutcomeRejected,
			Text: fmt.Sprintf("Trade failed: %s (code %d)", res.Comment, res.RetCode),
		}
	}

	e.state.RecordFill(sig.Symbol, sig.Action)

	logger.Trade(ctx, sig.Symbol, string(sig.Action), volume.String(), price.StringFixed(info.Digits), res.RetCode,
		"stop_loss", stopLoss.StringFixed(info.Digits),
		"target", target.StringFixed(info.Digits),
		"target_label", targetLabel,
	)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:     sig.Symbol,
		Side:       string(sig.Action),
		Volume:     volume.String(),
		Price:      price.StringFixed(info.Digits),
		StopLoss:   stopLoss.StringFixed(info.Digits),
		TakeProfit: target.StringFixed(info.Digits),
		Target:     targetLabel,
		RetCode:    res.RetCode,
		Comment:    res.Comment,
	})

	equityLine := ""
	if acct, err := e.terminal.Account(ctx); err == nil {
		if initial, ok := e.state.InitialEquity(); ok {
			delta := acct.Equity.Sub(initial)
			sign := ""
			if !delta.IsNegative() {
				sign = "+"
			}
			equityLine = fmt.Sprintf("\nEquity: $%s (%s%s)", acct.Equity.StringFixed(2), sign, delta.StringFixed(2))
		}
	}

	msg := fmt.Sprintf("✅ Trade Executed\nSymbol: %s\nAction: %s\nSize: %s lots\nPrice: %s\nStop Loss: %s\nTarget: %s (%s)\nSpread: %s points%s",
		sig.Symbol,
		strings.ToUpper(string(sig.Action)),
		volume.String(),
		price.StringFixed(info.Digits),
		stopLoss.StringFixed(info.Digits),
		target.StringFixed(info.Digits),
		targetLabel,
		spread.StringFixed(1),
		equityLine,
	)

	return types.Outcome{OK: true, Kind: types.OutcomeExecuted, Text: msg}
}

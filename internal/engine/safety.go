package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/store"
)

var hundred = decimal.NewFromInt(100)

// safetyMonitor is the equity-loss circuit breaker. It compares the current
// account equity against the baseline captured at startup and trips once
// the loss percentage meets the configured threshold.
type safetyMonitor struct {
	state    *State
	terminal interfaces.Terminal
}

func newSafetyMonitor(state *State, terminal interfaces.Terminal) *safetyMonitor {
	return &safetyMonitor{state: state, terminal: terminal}
}

// check evaluates the breaker. It trips exactly when safety is enabled and
// (initialEquity - equity) / initialEquity * 100 >= threshold. An account
// fetch failure is returned to the caller and never counts as a trip.
func (sm *safetyMonitor) check(ctx context.Context, view store.SettingsView) (tripped bool, lossPct decimal.Decimal, err error) {
	if !view.SafetyEnabled {
		return false, decimal.Zero, nil
	}

	initial, ok := sm.state.InitialEquity()
	if !ok || !initial.IsPositive() {
		return false, decimal.Zero, nil
	}

	acct, err := sm.terminal.Account(ctx)
	if err != nil {
		return false, decimal.Zero, err
	}

	lossPct = initial.Sub(acct.Equity).Div(initial).Mul(hundred)
	return lossPct.GreaterThanOrEqual(view.MaxLossPercent), lossPct, nil
}

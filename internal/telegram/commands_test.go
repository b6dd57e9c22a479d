package telegram

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/engine"
	"signal-copier-bot/internal/store"
	"signal-copier-bot/internal/types"
)

type stubTerminal struct {
	account   types.Account
	positions []types.Position
}

func (s *stubTerminal) Start(ctx context.Context) error { return nil }
func (s *stubTerminal) Stop(ctx context.Context)        {}
func (s *stubTerminal) Account(ctx context.Context) (types.Account, error) {
	return s.account, nil
}
func (s *stubTerminal) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	return types.Quote{}, nil
}
func (s *stubTerminal) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	return types.SymbolInfo{}, nil
}
func (s *stubTerminal) Positions(ctx context.Context, symbol string) ([]types.Position, error) {
	return s.positions, nil
}
func (s *stubTerminal) SendOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	return types.OrderResult{RetCode: types.RetCodeDone}, nil
}

type stubCloser struct {
	closed int
	calls  int
}

func (s *stubCloser) CloseAll(ctx context.Context) (int, error) {
	s.calls++
	return s.closed, nil
}

func newTestCommands(t *testing.T) (*Commands, *engine.State, *store.Settings, *stubTerminal, *stubCloser) {
	t.Helper()
	cfg := &store.Config{}
	cfg.Trading.BaseLot = 0.1
	cfg.Trading.LotIncrement = 0.05
	cfg.Trading.StopLossPoints = 15
	cfg.Trading.MaxSpreadPoints = 5
	cfg.Trading.SmartTargets = true
	cfg.Safety.Enabled = true
	cfg.Safety.MaxLossPercent = 35

	settings := store.NewSettings(cfg)
	state := engine.NewState()
	term := &stubTerminal{
		account: types.Account{
			Balance: decimal.NewFromInt(10000),
			Equity:  decimal.NewFromInt(10000),
		},
	}
	closer := &stubCloser{}
	return NewCommands(settings, state, term, closer), state, settings, term, closer
}

func TestStartStopToggleActive(t *testing.T) {
	cmds, state, _, _, _ := newTestCommands(t)
	ctx := context.Background()

	reply := cmds.Handle(ctx, "start", "")
	if !state.Active() {
		t.Error("/start must activate the bot")
	}
	if !strings.Contains(reply, "🟢 Bot Started") {
		t.Errorf("unexpected /start reply: %q", reply)
	}

	reply = cmds.Handle(ctx, "stop", "")
	if state.Active() {
		t.Error("/stop must deactivate the bot")
	}
	if reply != "🔴 Bot Stopped" {
		t.Errorf("unexpected /stop reply: %q", reply)
	}
}

func TestBaseLotRange(t *testing.T) {
	cmds, _, settings, _, _ := newTestCommands(t)
	ctx := context.Background()

	reply := cmds.Handle(ctx, "baselot", "0.25")
	if !strings.Contains(reply, "✅") {
		t.Errorf("valid lot rejected: %q", reply)
	}
	if !settings.Snapshot().BaseLot.Equal(decimal.RequireFromString("0.25")) {
		t.Error("base lot was not applied")
	}

	reply = cmds.Handle(ctx, "baselot", "2.0")
	if !strings.Contains(reply, "❌") {
		t.Errorf("out-of-range lot accepted: %q", reply)
	}
	if !settings.Snapshot().BaseLot.Equal(decimal.RequireFromString("0.25")) {
		t.Error("rejected value must not mutate settings")
	}

	reply = cmds.Handle(ctx, "baselot", "abc")
	if !strings.Contains(reply, "Invalid number") {
		t.Errorf("non-numeric lot accepted: %q", reply)
	}
}

func TestSettingCommandsWithoutArgsShowCurrent(t *testing.T) {
	cmds, _, _, _, _ := newTestCommands(t)
	ctx := context.Background()

	cases := map[string]string{
		"baselot":  "Current base lot: 0.1",
		"safety":   "Current safety: 35%",
		"stoploss": "Current stop loss: 15 points",
		"spread":   "Current max spread: 5 points",
	}
	for cmd, want := range cases {
		reply := cmds.Handle(ctx, cmd, "")
		if !strings.Contains(reply, want) {
			t.Errorf("/%s: expected %q in reply, got %q", cmd, want, reply)
		}
	}
}

func TestSafetyRange(t *testing.T) {
	cmds, _, settings, _, _ := newTestCommands(t)
	ctx := context.Background()

	if reply := cmds.Handle(ctx, "safety", "50"); !strings.Contains(reply, "✅") {
		t.Errorf("valid safety rejected: %q", reply)
	}
	if reply := cmds.Handle(ctx, "safety", "90"); !strings.Contains(reply, "❌") {
		t.Errorf("out-of-range safety accepted: %q", reply)
	}
	if !settings.Snapshot().MaxLossPercent.Equal(decimal.NewFromInt(50)) {
		t.Error("safety should still hold the last valid value")
	}
}

func TestToggles(t *testing.T) {
	cmds, _, settings, _, _ := newTestCommands(t)
	ctx := context.Background()

	if reply := cmds.Handle(ctx, "smarttargets", ""); !strings.Contains(reply, "disabled") {
		t.Errorf("expected smart targets to flip off, got %q", reply)
	}
	if settings.Snapshot().SmartTargets {
		t.Error("smart targets should be off after toggle")
	}

	if reply := cmds.Handle(ctx, "safetyoff", ""); !strings.Contains(reply, "disabled") {
		t.Errorf("expected safety to flip off, got %q", reply)
	}
	if settings.Snapshot().SafetyEnabled {
		t.Error("safety should be off after toggle")
	}
}

func TestStatusShowsAccountAndSettings(t *testing.T) {
	cmds, state, _, term, _ := newTestCommands(t)
	state.SetInitialEquity(decimal.NewFromInt(9500))
	term.account.Equity = decimal.NewFromInt(10000)

	reply := cmds.Handle(context.Background(), "status", "")
	for _, want := range []string{"🔴 Inactive", "Balance: $10000.00", "Equity: $10000.00", "Profit/Loss: +500.00", "Base lot: 0.1"} {
		if !strings.Contains(reply, want) {
			t.Errorf("status missing %q:\n%s", want, reply)
		}
	}
}

func TestPositionsListing(t *testing.T) {
	cmds, _, _, term, _ := newTestCommands(t)
	ctx := context.Background()

	if reply := cmds.Handle(ctx, "positions", ""); reply != "No open positions" {
		t.Errorf("unexpected empty-book reply: %q", reply)
	}

	term.positions = []types.Position{
		{
			Ticket: 1, Symbol: "XAUUSD", Side: types.ActionBuy,
			Volume:       decimal.RequireFromString("0.1"),
			OpenPrice:    decimal.RequireFromString("2300.03"),
			CurrentPrice: decimal.RequireFromString("2305.00"),
			Profit:       decimal.RequireFromString("49.70"),
		},
		{
			Ticket: 2, Symbol: "XAUUSD", Side: types.ActionSell,
			Volume:       decimal.RequireFromString("0.15"),
			OpenPrice:    decimal.RequireFromString("2310.00"),
			CurrentPrice: decimal.RequireFromString("2305.00"),
			Profit:       decimal.RequireFromString("75.00"),
		},
	}
	reply := cmds.Handle(ctx, "positions", "")
	for _, want := range []string{"1. BUY 0.1 lots XAUUSD", "2. SELL 0.15 lots XAUUSD", "Total P&L: $124.70"} {
		if !strings.Contains(reply, want) {
			t.Errorf("positions missing %q:\n%s", want, reply)
		}
	}
}

func TestCloseAll(t *testing.T) {
	cmds, _, _, term, closer := newTestCommands(t)
	ctx := context.Background()

	if reply := cmds.Handle(ctx, "close", ""); reply != "No positions to close" {
		t.Errorf("unexpected empty-book reply: %q", reply)
	}
	if closer.calls != 0 {
		t.Error("close must not run with an empty book")
	}

	term.positions = []types.Position{{Ticket: 1, Symbol: "XAUUSD", Side: types.ActionBuy}}
	closer.closed = 1
	reply := cmds.Handle(ctx, "close", "")
	if closer.calls != 1 {
		t.Errorf("expected one close call, got %d", closer.calls)
	}
	if !strings.Contains(reply, "Closed 1 positions") {
		t.Errorf("unexpected close reply: %q", reply)
	}
}

func TestUnknownCommandGetsHelp(t *testing.T) {
	cmds, _, _, _, _ := newTestCommands(t)
	reply := cmds.Handle(context.Background(), "bogus", "")
	if !strings.Contains(reply, "/help - This message") {
		t.Errorf("expected help text, got %q", reply)
	}
}

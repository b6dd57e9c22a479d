package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/engine"
	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/store"
)

// PositionCloser closes every open position at market.
type PositionCloser interface {
	CloseAll(ctx context.Context) (int, error)
}

// Commands dispatches operator commands to the running bot. Every handler
// returns the reply text; handlers never mutate anything on a rejected
// argument.
type Commands struct {
	settings *store.Settings
	state    *engine.State
	terminal interfaces.Terminal
	closer   PositionCloser
}

func NewCommands(settings *store.Settings, state *engine.State, terminal interfaces.Terminal, closer PositionCloser) *Commands {
	return &Commands{settings: settings, state: state, terminal: terminal, closer: closer}
}

// Handle runs one command and returns the reply. Unknown commands get the
// help text.
func (c *Commands) Handle(ctx context.Context, command, args string) string {
	logger.Debug(ctx, "Handling command", "command", command, "args", args)

	switch command {
	case "start":
		return c.start()
	case "stop":
		c.state.Deactivate()
		return "🔴 Bot Stopped"
	case "status":
		return c.status(ctx)
	case "positions":
		return c.positions(ctx)
	case "close":
		return c.closeAll(ctx)
	case "baselot":
		return c.setBaseLot(args)
	case "safety":
		return c.setSafety(args)
	case "stoploss":
		return c.setStopLoss(args)
	case "spread":
		return c.setSpread(args)
	case "smarttargets":
		if c.settings.ToggleSmartTargets() {
			return "🎯 Smart targets enabled"
		}
		return "🎯 Smart targets disabled"
	case "safetyoff":
		if c.settings.ToggleSafety() {
			return "🛡️ Safety features enabled"
		}
		return "🛡️ Safety features disabled"
	case "help":
		return helpText
	default:
		return helpText
	}
}

func (c *Commands) start() string {
	c.state.Activate()
	view := c.settings.Snapshot()
	smart := "Off"
	if view.SmartTargets {
		smart = "On"
	}
	return fmt.Sprintf("🟢 Bot Started\nBase lot size: %s\nSafety stop: %s%%\nSpread limit: %s points\nSmart targets: %s",
		view.BaseLot.String(), view.MaxLossPercent.String(), view.MaxSpreadPoints.String(), smart)
}

func (c *Commands) status(ctx context.Context) string {
	acct, err := c.terminal.Account(ctx)
	if err != nil {
		return "❌ Cannot connect to terminal"
	}

	statusText := "🔴 Inactive"
	if c.state.Active() {
		statusText = "🟢 Active"
	}

	profitLine := "n/a"
	if initial, ok := c.state.InitialEquity(); ok {
		delta := acct.Equity.Sub(initial)
		sign := ""
		if !delta.IsNegative() {
			sign = "+"
		}
		profitLine = sign + delta.StringFixed(2)
	}

	view := c.settings.Snapshot()
	return fmt.Sprintf("📊 Bot Status: %s\n\n💰 Account:\nBalance: $%s\nEquity: $%s\nProfit/Loss: %s\n\n⚙️ Settings:\nBase lot: %s\nSafety stop: %s%%\nStop loss: %s points\nMax spread: %s points",
		statusText,
		acct.Balance.StringFixed(2),
		acct.Equity.StringFixed(2),
		profitLine,
		view.BaseLot.String(),
		view.MaxLossPercent.String(),
		view.StopLossPoints.String(),
		view.MaxSpreadPoints.String(),
	)
}

func (c *Commands) positions(ctx context.Context) string {
	positions, err := c.terminal.Positions(ctx, "")
	if err != nil {
		return "❌ Cannot fetch positions"
	}
	if len(positions) == 0 {
		return "No open positions"
	}

	var b strings.Builder
	b.WriteString("📊 Open Positions:\n\n")
	total := decimal.Zero
	for i, pos := range positions {
		total = total.Add(pos.Profit)
		fmt.Fprintf(&b, "%d. %s %s lots %s\n", i+1, strings.ToUpper(string(pos.Side)), pos.Volume.String(), pos.Symbol)
		fmt.Fprintf(&b, "   Entry: %s\n", pos.OpenPrice.StringFixed(2))
		fmt.Fprintf(&b, "   Current: %s\n", pos.CurrentPrice.StringFixed(2))
		fmt.Fprintf(&b, "   P&L: $%s\n\n", pos.Profit.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total P&L: $%s", total.StringFixed(2))
	return b.String()
}

func (c *Commands) closeAll(ctx context.Context) string {
	positions, err := c.terminal.Positions(ctx, "")
	if err != nil {
		return "❌ Cannot fetch positions"
	}
	if len(positions) == 0 {
		return "No positions to close"
	}

	closed, err := c.closer.CloseAll(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Close failed: %v", err)
	}
	return fmt.Sprintf("✅ Closed %d positions", closed)
}

func (c *Commands) setBaseLot(args string) string {
	if args == "" {
		return fmt.Sprintf("Current base lot: %s\nUsage: /baselot 0.05", c.settings.Snapshot().BaseLot.String())
	}
	v, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return "❌ Invalid number"
	}
	if err := c.settings.SetBaseLot(v); err != nil {
		return fmt.Sprintf("❌ Lot size must be between %.2f and %.1f", store.MinBaseLot, store.MaxBaseLot)
	}
	return fmt.Sprintf("✅ Base lot changed to %v", v)
}

func (c *Commands) setSafety(args string) string {
	if args == "" {
		return fmt.Sprintf("Current safety: %s%%\nUsage: /safety 25", c.settings.Snapshot().MaxLossPercent.String())
	}
	v, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return "❌ Invalid number"
	}
	if err := c.settings.SetMaxLossPercent(v); err != nil {
		return fmt.Sprintf("❌ Safety must be between %.0f%% and %.0f%%", store.MinSafetyPercent, store.MaxSafetyPercent)
	}
	return fmt.Sprintf("✅ Safety stop set to %v%%", v)
}

func (c *Commands) setStopLoss(args string) string {
	if args == "" {
		return fmt.Sprintf("Current stop loss: %s points\nUsage: /stoploss 20", c.settings.Snapshot().StopLossPoints.String())
	}
	v, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return "❌ Invalid number"
	}
	if err := c.settings.SetStopLossPoints(v); err != nil {
		return fmt.Sprintf("❌ Stop loss must be between %.0f and %.0f points", store.MinStopLossPoints, store.MaxStopLossPoints)
	}
	return fmt.Sprintf("✅ Stop loss set to %v points", v)
}

func (c *Commands) setSpread(args string) string {
	if args == "" {
		return fmt.Sprintf("Current max spread: %s points\nUsage: /spread 10", c.settings.Snapshot().MaxSpreadPoints.String())
	}
	v, err := strconv.ParseFloat(args, 64)
	if err != nil {
		return "❌ Invalid number"
	}
	if err := c.settings.SetMaxSpreadPoints(v); err != nil {
		return fmt.Sprintf("❌ Spread must be between %.0f and %.0f points", store.MinSpreadPoints, store.MaxSpreadPoints)
	}
	return fmt.Sprintf("✅ Max spread set to %v points", v)
}

// StartupMessage summarizes the configuration on boot. The bot always boots
// inactive; trading begins only on an explicit /start.
func StartupMessage(view store.SettingsView) string {
	smart := "Off"
	if view.SmartTargets {
		smart = "On"
	}
	return fmt.Sprintf("🤖 Signal Copier Online\n\nSettings:\n• Base lot: %s\n• Safety stop: %s%%\n• Stop loss: %s points\n• Max spread: %s points\n• Smart targets: %s\n\nUse /help for commands\nUse /start to begin trading\n\n⚠️ Bot starts INACTIVE",
		view.BaseLot.String(), view.MaxLossPercent.String(), view.StopLossPoints.String(), view.MaxSpreadPoints.String(), smart)
}

const helpText = "🤖 Trading Bot Commands:\n\n" +
	"Basic:\n" +
	"/start - Start bot\n" +
	"/stop - Stop bot\n" +
	"/status - Show status\n" +
	"/positions - Show trades\n" +
	"/close - Close all positions\n\n" +
	"Settings:\n" +
	"/baselot 0.1 - Set base lot size\n" +
	"/safety 35 - Set safety stop %\n" +
	"/stoploss 15 - Set stop loss points\n" +
	"/spread 5 - Set max spread points\n" +
	"/smarttargets - Toggle smart TP\n" +
	"/safetyoff - Toggle safety features\n\n" +
	"Debug:\n" +
	"/help - This message"

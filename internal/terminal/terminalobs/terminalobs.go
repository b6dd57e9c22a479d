package terminalobs

import (
	"context"
	"fmt"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/trace"
	"signal-copier-bot/internal/types"
)

// observableTerminal wraps a Terminal with observability (logging & tracing)
type observableTerminal struct {
	terminal interfaces.Terminal
}

// Compile-time interface check
var _ interfaces.Terminal = (*observableTerminal)(nil)

// Wrap wraps a terminal with observability middleware
func Wrap(terminal interfaces.Terminal) interfaces.Terminal {
	return &observableTerminal{
		terminal: terminal,
	}
}

// Start initializes the terminal with observability
func (ot *observableTerminal) Start(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "terminal.Start")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting terminal")

	err := ot.terminal.Start(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to start terminal", err)
		return fmt.Errorf("terminal start failed: %w", err)
	}

	logger.InfoSkip(ctx, 1, "Terminal started successfully")
	return nil
}

// Stop shuts down the terminal with observability
func (ot *observableTerminal) Stop(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "terminal.Stop")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Stopping terminal")
	ot.terminal.Stop(ctx)
	logger.InfoSkip(ctx, 1, "Terminal stopped successfully")
}

// Account fetches the account snapshot with observability
func (ot *observableTerminal) Account(ctx context.Context) (types.Account, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.Account")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching account")

	acct, err := ot.terminal.Account(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account", err)
		return types.Account{}, err
	}

	logger.DebugSkip(ctx, 1, "Account fetched successfully",
		"balance", acct.Balance.String(), "equity", acct.Equity.String())
	return acct, nil
}

// Quote fetches the current bid/ask with observability
func (ot *observableTerminal) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.Quote")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching quote", "symbol", symbol)

	quote, err := ot.terminal.Quote(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch quote", err, "symbol", symbol)
		return types.Quote{}, err
	}

	logger.DebugSkip(ctx, 1, "Quote fetched successfully",
		"symbol", symbol, "bid", quote.Bid.String(), "ask", quote.Ask.String())
	return quote, nil
}

// SymbolInfo fetches instrument metadata with observability
func (ot *observableTerminal) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.SymbolInfo")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching symbol info", "symbol", symbol)

	info, err := ot.terminal.SymbolInfo(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch symbol info", err, "symbol", symbol)
		return types.SymbolInfo{}, err
	}

	logger.DebugSkip(ctx, 1, "Symbol info fetched successfully",
		"symbol", symbol, "point", info.Point.String(), "digits", info.Digits)
	return info, nil
}

// Positions lists open positions with observability
func (ot *observableTerminal) Positions(ctx context.Context, symbol string) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.Positions")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching positions", "symbol", symbol)

	positions, err := ot.terminal.Positions(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Positions fetched successfully",
		"symbol", symbol, "count", len(positions))
	return positions, nil
}

// SendOrder submits an order with observability
func (ot *observableTerminal) SendOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "terminal.SendOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Sending order",
		"symbol", req.Symbol,
		"side", string(req.Side),
		"volume", req.Volume.String(),
		"price", req.Price.String(),
		"ticket", req.Ticket,
	)

	result, err := ot.terminal.SendOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to send order", err,
			"symbol", req.Symbol,
			"side", string(req.Side),
			"volume", req.Volume.String(),
		)
		return types.OrderResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Order result received",
		"symbol", req.Symbol,
		"retcode", result.RetCode,
		"order", result.Order,
		"deal", result.Deal,
	)
	return result, nil
}

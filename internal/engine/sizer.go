package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/interfaces"
	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/store"
	"signal-copier-bot/internal/types"
)

var five = decimal.NewFromInt(5)

// sizer computes the progressive position size and handles the opposing
// exposure a direction change leaves behind.
type sizer struct {
	state    *State
	terminal interfaces.Terminal
}

func newSizer(state *State, terminal interfaces.Terminal) *sizer {
	return &sizer{state: state, terminal: terminal}
}

// volume returns the lot size for the next trade on symbol.
//
// A direction change resets the consecutive count to 1 and closes all open
// positions on the symbol at market before sizing. A repeat of the prior
// direction increments the count. The size progresses as
// base + increment*(count-1), capped at five times the base lot.
func (sz *sizer) volume(ctx context.Context, symbol string, action types.Action, view store.SettingsView) decimal.Decimal {
	count, changed := sz.state.Advance(symbol, action)
	if changed {
		last, _ := sz.state.LastAction(symbol)
		logger.Debug(ctx, "Direction changed, closing opposing exposure",
			"symbol", symbol, "last_action", string(last), "action", string(action))

		closed, err := sz.closeSymbolPositions(ctx, symbol, "Direction change")
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to close opposing positions", err, "symbol", symbol)
		} else if closed > 0 {
			logger.Info(ctx, "Closed opposing positions", "symbol", symbol, "count", closed)
		}
	}

	vol := view.BaseLot.Add(view.LotIncrement.Mul(decimal.NewFromInt(int64(count - 1))))
	if maxVol := view.BaseLot.Mul(five); vol.GreaterThan(maxVol) {
		vol = maxVol
	}

	logger.Debug(ctx, "Position size computed",
		"symbol", symbol, "volume", vol.String(), "consecutive", count)
	return vol
}

// closeSymbolPositions submits a market order of the opposite side and equal
// volume for every open position on the symbol. An empty symbol closes every
// position. Longs close at the bid, shorts at the ask. Only fills confirmed
// by the terminal count as closed.
func (sz *sizer) closeSymbolPositions(ctx context.Context, symbol, comment string) (int, error) {
	positions, err := sz.terminal.Positions(ctx, symbol)
	if err != nil {
		return 0, err
	}
	if len(positions) == 0 {
		return 0, nil
	}

	closed := 0
	for _, pos := range positions {
		quote, err := sz.terminal.Quote(ctx, pos.Symbol)
		if err != nil {
			logger.Warn(ctx, "No quote while closing position, skipping",
				"symbol", pos.Symbol, "ticket", pos.Ticket, "error", err)
			continue
		}

		price := quote.Bid
		if pos.Side == types.ActionSell {
			price = quote.Ask
		}

		req := types.OrderRequest{
			Symbol:    pos.Symbol,
			Side:      pos.Side.Opposite(),
			Volume:    pos.Volume,
			Price:     price,
			Ticket:    pos.Ticket,
			Deviation: types.Deviation,
			Magic:     types.Magic,
			Comment:   comment,
			ClientID:  uuid.NewString(),
		}

		res, err := sz.terminal.SendOrder(ctx, req)
		if err != nil {
			logger.ErrorWithErr(ctx, "Close order failed", err,
				"symbol", pos.Symbol, "ticket", pos.Ticket)
			continue
		}
		if res.Done() {
			closed++
			logger.Info(ctx, "Closed position", "symbol", pos.Symbol, "ticket", pos.Ticket)
		} else {
			logger.Warn(ctx, "Close order not confirmed",
				"symbol", pos.Symbol, "ticket", pos.Ticket, "retcode", res.RetCode, "comment", res.Comment)
		}
	}

	return closed, nil
}

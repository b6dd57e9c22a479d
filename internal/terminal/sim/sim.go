// Package sim is an in-process stand-in for a MetaTrader terminal. It serves
// synthetic quotes and fills every order immediately, so the whole pipeline
// can run in DRY_RUN mode with no terminal attached.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/logger"
	"signal-copier-bot/internal/types"
)

// basePrices seeds the random walk per symbol. Unknown symbols start at 100.
var basePrices = map[string]float64{
	"XAUUSD": 2300.0,
	"EURUSD": 1.08,
	"GBPUSD": 1.27,
	"US30":   39000.0,
	"BTCUSD": 62000.0,
}

type Terminal struct {
	mu sync.Mutex

	balance    decimal.Decimal
	prices     map[string]float64
	positions  map[int64]types.Position
	nextTicket int64
	nextDeal   int64
}

func New() *Terminal {
	return &Terminal{
		balance:    decimal.NewFromInt(10000),
		prices:     make(map[string]float64),
		positions:  make(map[int64]types.Position),
		nextTicket: 1000,
		nextDeal:   5000,
	}
}

func (t *Terminal) Start(ctx context.Context) error {
	logger.Info(ctx, "Simulated terminal started", "balance", t.balance.String())
	return nil
}

func (t *Terminal) Stop(ctx context.Context) {
	logger.Info(ctx, "Simulated terminal stopped")
}

func (t *Terminal) Account(ctx context.Context) (types.Account, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	equity := t.balance
	for _, pos := range t.positions {
		equity = equity.Add(pos.Profit)
	}
	return types.Account{Balance: t.balance, Equity: equity, Currency: "USD"}, nil
}

func (t *Terminal) Quote(ctx context.Context, symbol string) (types.Quote, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mid := t.walk(symbol)
	spread := mid * 0.00002
	return types.Quote{
		Symbol: symbol,
		Bid:    decimal.NewFromFloat(mid),
		Ask:    decimal.NewFromFloat(mid + spread),
		Time:   time.Now().UTC(),
	}, nil
}

func (t *Terminal) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	point := decimal.RequireFromString("0.01")
	digits := int32(2)
	if base, ok := basePrices[symbol]; ok && base < 10 {
		point = decimal.RequireFromString("0.00001")
		digits = 5
	}
	return types.SymbolInfo{Name: symbol, Point: point, Digits: digits}, nil
}

func (t *Terminal) Positions(ctx context.Context, symbol string) ([]types.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Position, 0, len(t.positions))
	for _, pos := range t.positions {
		if symbol == "" || pos.Symbol == symbol {
			out = append(out, pos)
		}
	}
	return out, nil
}

// SendOrder fills every request at its submitted price. A request carrying a
// ticket closes that position; anything else opens a new one.
func (t *Terminal) SendOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextDeal++
	if req.Ticket != 0 {
		pos, ok := t.positions[req.Ticket]
		if !ok {
			return types.OrderResult{
				RetCode: 10013, // TRADE_RETCODE_INVALID
				Comment: fmt.Sprintf("position %d not found", req.Ticket),
			}, nil
		}
		delete(t.positions, req.Ticket)
		t.balance = t.balance.Add(pos.Profit)
		logger.Info(ctx, "Simulated position closed",
			"ticket", req.Ticket, "symbol", pos.Symbol, "profit", pos.Profit.String())
		return types.OrderResult{RetCode: types.RetCodeDone, Deal: t.nextDeal, Comment: "closed"}, nil
	}

	t.nextTicket++
	t.positions[t.nextTicket] = types.Position{
		Ticket:       t.nextTicket,
		Symbol:       req.Symbol,
		Side:         req.Side,
		Volume:       req.Volume,
		OpenPrice:    req.Price,
		CurrentPrice: req.Price,
	}
	logger.Info(ctx, "Simulated order filled",
		"ticket", t.nextTicket, "symbol", req.Symbol, "side", string(req.Side),
		"volume", req.Volume.String(), "price", req.Price.String())
	return types.OrderResult{
		RetCode: types.RetCodeDone,
		Order:   t.nextTicket,
		Deal:    t.nextDeal,
		Comment: "simulated",
	}, nil
}

// walk nudges the symbol's price by up to 5 basis points per call.
func (t *Terminal) walk(symbol string) float64 {
	price, ok := t.prices[symbol]
	if !ok {
		price = basePrices[symbol]
		if price == 0 {
			price = 100.0
		}
	}
	price *= 1 + (rand.Float64()-0.5)*0.001
	t.prices[symbol] = price
	return price
}

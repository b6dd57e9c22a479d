package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/types"
)

func TestLotProgression(t *testing.T) {
	term := goldTerminal()
	state := NewState()
	sz := newSizer(state, term)
	view := testSettings(t).Snapshot()

	want := []string{"0.1", "0.15", "0.2", "0.25", "0.3", "0.35", "0.4", "0.45", "0.5", "0.5", "0.5"}

	for i, w := range want {
		vol := sz.volume(context.Background(), "XAUUSD", types.ActionBuy, view)
		if !vol.Equal(decimal.RequireFromString(w)) {
			t.Fatalf("trade %d: expected volume %s, got %s", i+1, w, vol)
		}
		// Progression advances on confirmed fills.
		state.RecordFill("XAUUSD", types.ActionBuy)
	}
}

func TestDirectionChangeResetsProgression(t *testing.T) {
	term := goldTerminal()
	state := NewState()
	sz := newSizer(state, term)
	view := testSettings(t).Snapshot()

	for i := 0; i < 3; i++ {
		sz.volume(context.Background(), "XAUUSD", types.ActionBuy, view)
		state.RecordFill("XAUUSD", types.ActionBuy)
	}

	vol := sz.volume(context.Background(), "XAUUSD", types.ActionSell, view)
	if !vol.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("direction change should reset to base lot, got %s", vol)
	}
	if got := state.Consecutive("XAUUSD"); got != 1 {
		t.Errorf("direction change should reset consecutive count to 1, got %d", got)
	}
}

func TestDirectionChangeClosesOpposingPositions(t *testing.T) {
	term := goldTerminal()
	term.positions = []types.Position{
		{Ticket: 11, Symbol: "XAUUSD", Side: types.ActionBuy, Volume: decimal.RequireFromString("0.2")},
		{Ticket: 12, Symbol: "XAUUSD", Side: types.ActionBuy, Volume: decimal.RequireFromString("0.15")},
	}
	state := NewState()
	state.RecordFill("XAUUSD", types.ActionBuy)
	sz := newSizer(state, term)
	view := testSettings(t).Snapshot()

	sz.volume(context.Background(), "XAUUSD", types.ActionSell, view)

	if len(term.orders) != 2 {
		t.Fatalf("expected a closing order per open position, got %d", len(term.orders))
	}
	for i, req := range term.orders {
		if req.Side != types.ActionSell {
			t.Errorf("order %d: longs close with a sell, got %s", i, req.Side)
		}
		// Longs close at the bid.
		if !req.Price.Equal(term.quote.Bid) {
			t.Errorf("order %d: expected close at bid %s, got %s", i, term.quote.Bid, req.Price)
		}
		if req.Ticket != term.positions[i].Ticket {
			t.Errorf("order %d: expected ticket %d, got %d", i, term.positions[i].Ticket, req.Ticket)
		}
		if !req.Volume.Equal(term.positions[i].Volume) {
			t.Errorf("order %d: close volume must equal position volume", i)
		}
	}
}

func TestSameDirectionDoesNotClose(t *testing.T) {
	term := goldTerminal()
	state := NewState()
	sz := newSizer(state, term)
	view := testSettings(t).Snapshot()

	sz.volume(context.Background(), "XAUUSD", types.ActionBuy, view)
	state.RecordFill("XAUUSD", types.ActionBuy)
	term.positions = []types.Position{
		{Ticket: 11, Symbol: "XAUUSD", Side: types.ActionBuy, Volume: decimal.RequireFromString("0.1")},
	}
	vol := sz.volume(context.Background(), "XAUUSD", types.ActionBuy, view)

	if len(term.orders) != 0 {
		t.Errorf("same direction must not close positions, sent %d orders", len(term.orders))
	}
	if !vol.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("second consecutive buy should size at 0.15, got %s", vol)
	}
}

func TestShortsCloseAtAsk(t *testing.T) {
	term := goldTerminal()
	term.positions = []types.Position{
		{Ticket: 21, Symbol: "XAUUSD", Side: types.ActionSell, Volume: decimal.RequireFromString("0.1")},
	}
	state := NewState()
	state.RecordFill("XAUUSD", types.ActionSell)
	sz := newSizer(state, term)
	view := testSettings(t).Snapshot()

	sz.volume(context.Background(), "XAUUSD", types.ActionBuy, view)

	if len(term.orders) != 1 {
		t.Fatalf("expected one closing order, got %d", len(term.orders))
	}
	req := term.orders[0]
	if req.Side != types.ActionBuy {
		t.Errorf("shorts close with a buy, got %s", req.Side)
	}
	if !req.Price.Equal(term.quote.Ask) {
		t.Errorf("shorts close at the ask %s, got %s", term.quote.Ask, req.Price)
	}
}

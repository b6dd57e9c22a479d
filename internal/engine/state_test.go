package engine

import (
	"testing"

	"signal-copier-bot/internal/types"
)

func TestAdvanceProgression(t *testing.T) {
	state := NewState()

	// No prior fill counts as a direction change, like a flip does.
	count, changed := state.Advance("XAUUSD", types.ActionBuy)
	if count != 1 || !changed {
		t.Errorf("first signal: expected count 1 and a direction change, got %d, %v", count, changed)
	}
	state.RecordFill("XAUUSD", types.ActionBuy)

	count, changed = state.Advance("XAUUSD", types.ActionBuy)
	if count != 2 || changed {
		t.Errorf("repeat: expected count 2 and no direction change, got %d, %v", count, changed)
	}
	state.RecordFill("XAUUSD", types.ActionBuy)

	count, changed = state.Advance("XAUUSD", types.ActionSell)
	if count != 1 || !changed {
		t.Errorf("flip: expected count 1 and a direction change, got %d, %v", count, changed)
	}
}

func TestRejectedOrderDoesNotMoveDirection(t *testing.T) {
	state := NewState()
	state.Advance("XAUUSD", types.ActionBuy)
	state.RecordFill("XAUUSD", types.ActionBuy)

	// A sell that never fills: Advance ran but RecordFill did not.
	state.Advance("XAUUSD", types.ActionSell)

	if last, _ := state.LastAction("XAUUSD"); last != types.ActionBuy {
		t.Errorf("last direction must stay %s until a fill, got %s", types.ActionBuy, last)
	}
	if _, changed := state.Advance("XAUUSD", types.ActionSell); !changed {
		t.Error("the next sell should still count as a direction change")
	}
}

func TestProgressionIsPerSymbol(t *testing.T) {
	state := NewState()
	state.Advance("XAUUSD", types.ActionBuy)
	state.RecordFill("XAUUSD", types.ActionBuy)
	state.Advance("XAUUSD", types.ActionBuy)

	if count, _ := state.Advance("EURUSD", types.ActionBuy); count != 1 {
		t.Errorf("EURUSD progression must be independent, got count %d", count)
	}
}

func TestConsecutiveNeverBelowOne(t *testing.T) {
	state := NewState()
	if got := state.Consecutive("XAUUSD"); got != 1 {
		t.Errorf("fresh symbol should report count 1, got %d", got)
	}
}

func TestActiveFlag(t *testing.T) {
	state := NewState()
	if state.Active() {
		t.Error("new state must start inactive")
	}
	state.Activate()
	if !state.Active() {
		t.Error("Activate should flip the flag on")
	}
	state.Deactivate()
	if state.Active() {
		t.Error("Deactivate should flip the flag off")
	}
}

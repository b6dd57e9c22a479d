package engine

import (
	"sync/atomic"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/types"
)

// State is the run-scoped engine state: active flag, equity baseline and
// per-symbol progression tracking. It is never persisted; deduplication and
// progression reset on restart. The active flag is atomic because the
// operator command goroutine toggles it while the alert consumer reads it;
// everything else is touched only by the single consumer (the equity
// baseline is written once during startup, before the consumer starts).
type State struct {
	active atomic.Bool

	initialEquity decimal.Decimal
	hasEquity     bool

	lastAction  map[string]types.Action
	consecutive map[string]int
}

func NewState() *State {
	return &State{
		lastAction:  make(map[string]types.Action),
		consecutive: make(map[string]int),
	}
}

func (s *State) Activate()    { s.active.Store(true) }
func (s *State) Deactivate()  { s.active.Store(false) }
func (s *State) Active() bool { return s.active.Load() }

// SetInitialEquity captures the equity baseline at startup. The safety
// monitor measures drawdown against it for the rest of the run.
func (s *State) SetInitialEquity(eq decimal.Decimal) {
	s.initialEquity = eq
	s.hasEquity = true
}

func (s *State) InitialEquity() (decimal.Decimal, bool) {
	return s.initialEquity, s.hasEquity
}

// LastAction returns the direction of the last filled trade on the symbol.
func (s *State) LastAction(symbol string) (types.Action, bool) {
	a, ok := s.lastAction[symbol]
	return a, ok
}

// Advance moves the consecutive-trade progression for a symbol. A direction
// change, including the first signal ever seen for a symbol, resets the
// count to 1; a repeat increments it. The last direction itself only moves
// on RecordFill, so a rejected order does not flip what counts as a
// direction change next time.
func (s *State) Advance(symbol string, action types.Action) (count int, directionChanged bool) {
	last, ok := s.lastAction[symbol]
	if !ok || last != action {
		s.consecutive[symbol] = 1
		return 1, true
	}
	s.consecutive[symbol]++
	return s.consecutive[symbol], false
}

// RecordFill marks a confirmed fill in the given direction.
func (s *State) RecordFill(symbol string, action types.Action) {
	s.lastAction[symbol] = action
}

// Consecutive returns the current progression count for a symbol.
func (s *State) Consecutive(symbol string) int {
	n := s.consecutive[symbol]
	if n < 1 {
		return 1
	}
	return n
}

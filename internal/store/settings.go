package store

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Settings holds the operator-adjustable trading parameters. The alert
// consumer reads a Snapshot per execution while the Telegram command
// goroutine mutates individual fields, so access is mutex-guarded.
type Settings struct {
	mu sync.RWMutex

	baseLot         decimal.Decimal
	lotIncrement    decimal.Decimal
	stopLossPoints  decimal.Decimal
	maxSpreadPoints decimal.Decimal
	maxLossPercent  decimal.Decimal
	smartTargets    bool
	safetyEnabled   bool
}

// SettingsView is an immutable copy of the settings taken at one point in
// time. One execution works from one view.
type SettingsView struct {
	BaseLot         decimal.Decimal
	LotIncrement    decimal.Decimal
	StopLossPoints  decimal.Decimal
	MaxSpreadPoints decimal.Decimal
	MaxLossPercent  decimal.Decimal
	SmartTargets    bool
	SafetyEnabled   bool
}

func NewSettings(cfg *Config) *Settings {
	return &Settings{
		baseLot:         decimal.NewFromFloat(cfg.Trading.BaseLot),
		lotIncrement:    decimal.NewFromFloat(cfg.Trading.LotIncrement),
		stopLossPoints:  decimal.NewFromFloat(cfg.Trading.StopLossPoints),
		maxSpreadPoints: decimal.NewFromFloat(cfg.Trading.MaxSpreadPoints),
		maxLossPercent:  decimal.NewFromFloat(cfg.Safety.MaxLossPercent),
		smartTargets:    cfg.Trading.SmartTargets,
		safetyEnabled:   cfg.Safety.Enabled,
	}
}

func (s *Settings) Snapshot() SettingsView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SettingsView{
		BaseLot:         s.baseLot,
		LotIncrement:    s.lotIncrement,
		StopLossPoints:  s.stopLossPoints,
		MaxSpreadPoints: s.maxSpreadPoints,
		MaxLossPercent:  s.maxLossPercent,
		SmartTargets:    s.smartTargets,
		SafetyEnabled:   s.safetyEnabled,
	}
}

// SetBaseLot updates the base lot size. Out-of-range values are rejected
// without mutating state.
func (s *Settings) SetBaseLot(v float64) error {
	if v < MinBaseLot || v > MaxBaseLot {
		return fmt.Errorf("lot size must be between %.2f and %.1f", MinBaseLot, MaxBaseLot)
	}
	s.mu.Lock()
	s.baseLot = decimal.NewFromFloat(v)
	s.mu.Unlock()
	return nil
}

// SetMaxLossPercent updates the equity-loss circuit breaker threshold.
func (s *Settings) SetMaxLossPercent(v float64) error {
	if v < MinSafetyPercent || v > MaxSafetyPercent {
		return fmt.Errorf("safety must be between %.0f%% and %.0f%%", MinSafetyPercent, MaxSafetyPercent)
	}
	s.mu.Lock()
	s.maxLossPercent = decimal.NewFromFloat(v)
	s.mu.Unlock()
	return nil
}

// SetStopLossPoints updates the fixed stop-loss distance.
func (s *Settings) SetStopLossPoints(v float64) error {
	if v < MinStopLossPoints || v > MaxStopLossPoints {
		return fmt.Errorf("stop loss must be between %.0f and %.0f points", MinStopLossPoints, MaxStopLossPoints)
	}
	s.mu.Lock()
	s.stopLossPoints = decimal.NewFromFloat(v)
	s.mu.Unlock()
	return nil
}

// SetMaxSpreadPoints updates the spread gate.
func (s *Settings) SetMaxSpreadPoints(v float64) error {
	if v < MinSpreadPoints || v > MaxSpreadPoints {
		return fmt.Errorf("spread must be between %.0f and %.0f points", MinSpreadPoints, MaxSpreadPoints)
	}
	s.mu.Lock()
	s.maxSpreadPoints = decimal.NewFromFloat(v)
	s.mu.Unlock()
	return nil
}

// ToggleSmartTargets flips smart target selection and returns the new state.
func (s *Settings) ToggleSmartTargets() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.smartTargets = !s.smartTargets
	return s.smartTargets
}

// ToggleSafety flips safety enforcement and returns the new state.
func (s *Settings) ToggleSafety() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.safetyEnabled = !s.safetyEnabled
	return s.safetyEnabled
}

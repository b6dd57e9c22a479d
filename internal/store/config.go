package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode string `yaml:"mode"` // DRY_RUN or LIVE

	Telegram struct {
		SourceChatID  int64   `yaml:"source_chat_id"`
		NotifyChatIDs []int64 `yaml:"notify_chat_ids"`
	} `yaml:"telegram"`

	Terminal struct {
		BridgeURL      string `yaml:"bridge_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"terminal"`

	Trading struct {
		BaseLot         float64 `yaml:"base_lot"`
		LotIncrement    float64 `yaml:"lot_increment"`
		StopLossPoints  float64 `yaml:"stop_loss_points"`
		MaxSpreadPoints float64 `yaml:"max_spread_points"`
		SmartTargets    bool    `yaml:"smart_targets"`
	} `yaml:"trading"`

	Safety struct {
		Enabled        bool    `yaml:"enabled"`
		MaxLossPercent float64 `yaml:"max_loss_percent"`
	} `yaml:"safety"`

	Dedup struct {
		MaxEntries          int  `yaml:"max_entries"`
		TTLMinutes          int  `yaml:"ttl_minutes"`
		NormalizeWhitespace bool `yaml:"normalize_whitespace"`
	} `yaml:"dedup"`

	Report struct {
		Enabled  bool   `yaml:"enabled"`
		RunAfter string `yaml:"run_after"` // HH:MM, broker server time
	} `yaml:"report"`
}

// Operator-adjustable setting bounds. The Telegram command handlers and
// Settings setters reject values outside these.
const (
	MinBaseLot        = 0.01
	MaxBaseLot        = 1.0
	MinSafetyPercent  = 5.0
	MaxSafetyPercent  = 80.0
	MinStopLossPoints = 5.0
	MaxStopLossPoints = 100.0
	MinSpreadPoints   = 1.0
	MaxSpreadPoints   = 50.0
)

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Telegram.SourceChatID == 0 {
		return errors.New("telegram.source_chat_id cannot be empty")
	}
	if len(c.Telegram.NotifyChatIDs) == 0 {
		return errors.New("telegram.notify_chat_ids cannot be empty")
	}
	if c.Mode == "LIVE" && c.Terminal.BridgeURL == "" {
		return errors.New("terminal.bridge_url is required in LIVE mode")
	}
	if c.Trading.BaseLot < MinBaseLot || c.Trading.BaseLot > MaxBaseLot {
		return fmt.Errorf("trading.base_lot must be between %.2f and %.2f, got %.2f", MinBaseLot, MaxBaseLot, c.Trading.BaseLot)
	}
	if c.Trading.LotIncrement < 0 {
		return fmt.Errorf("trading.lot_increment cannot be negative, got %.2f", c.Trading.LotIncrement)
	}
	if c.Trading.StopLossPoints < MinStopLossPoints || c.Trading.StopLossPoints > MaxStopLossPoints {
		return fmt.Errorf("trading.stop_loss_points must be between %.0f and %.0f, got %.1f", MinStopLossPoints, MaxStopLossPoints, c.Trading.StopLossPoints)
	}
	if c.Trading.MaxSpreadPoints < MinSpreadPoints || c.Trading.MaxSpreadPoints > MaxSpreadPoints {
		return fmt.Errorf("trading.max_spread_points must be between %.0f and %.0f, got %.1f", MinSpreadPoints, MaxSpreadPoints, c.Trading.MaxSpreadPoints)
	}
	if c.Safety.MaxLossPercent < MinSafetyPercent || c.Safety.MaxLossPercent > MaxSafetyPercent {
		return fmt.Errorf("safety.max_loss_percent must be between %.0f and %.0f, got %.1f", MinSafetyPercent, MaxSafetyPercent, c.Safety.MaxLossPercent)
	}
	return nil
}

// defaultConfig carries the settings a minimal config.yaml inherits. The
// booleans matter here: safety and smart targets are ON unless the file
// switches them off explicitly.
func defaultConfig() *Config {
	c := &Config{Mode: "DRY_RUN"}
	c.Terminal.TimeoutSeconds = 10
	c.Trading.BaseLot = 0.1
	c.Trading.LotIncrement = 0.05
	c.Trading.StopLossPoints = 15
	c.Trading.MaxSpreadPoints = 5
	c.Trading.SmartTargets = true
	c.Safety.Enabled = true
	c.Safety.MaxLossPercent = 35
	c.Dedup.MaxEntries = 4096
	c.Dedup.TTLMinutes = 360
	c.Report.RunAfter = "21:55"
	return c
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Decode on top of the defaults so keys absent from the file keep them.
	c := defaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}

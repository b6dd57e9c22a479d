// Package report writes the end-of-day trading summary: one CSV per day
// aggregating the journal by symbol and side.
package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/tradelog"
	"signal-copier-bot/internal/types"
)

type aggRow struct {
	Symbol    string
	BuyLots   decimal.Decimal
	BuyValue  decimal.Decimal
	SellLots  decimal.Decimal
	SellValue decimal.Decimal
	Trades    int
	Rejected  int
}

func logDir() string {
	if v := os.Getenv("COPIER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func csvPath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "eod", d+".csv")
}

// ShouldRunNow reports whether the daily summary is due: the clock has
// passed runAfter ("HH:MM", UTC) and today's CSV does not exist yet.
func ShouldRunNow(runAfter string) (bool, string) {
	now := time.Now().UTC()
	outPath := csvPath(now)

	cutoff, err := time.Parse("15:04", runAfter)
	if err != nil {
		return false, outPath
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), cutoff.Hour(), cutoff.Minute(), 0, 0, time.UTC)
	if now.After(due) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}

// SummarizeToday aggregates today's journal into a CSV and returns its
// path. An empty journal produces no file and an empty path.
func SummarizeToday() (string, error) {
	entries, err := tradelog.TodayEntries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	aggs := map[string]*aggRow{}
	for _, e := range entries {
		row := aggs[e.Symbol]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol}
			aggs[e.Symbol] = row
		}
		lots, err := decimal.NewFromString(e.Volume)
		if err != nil {
			continue
		}
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			continue
		}
		row.Trades++
		if e.RetCode != 0 && e.RetCode != types.RetCodeDone {
			row.Rejected++
			continue
		}
		value := lots.Mul(price)
		if e.Side == "buy" {
			row.BuyLots = row.BuyLots.Add(lots)
			row.BuyValue = row.BuyValue.Add(value)
		} else {
			row.SellLots = row.SellLots.Add(lots)
			row.SellValue = row.SellValue.Add(value)
		}
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := csvPath(time.Now().UTC())
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"symbol", "trades", "rejected", "buy_lots", "buy_value", "sell_lots", "sell_value"}); err != nil {
		return "", err
	}
	for _, k := range keys {
		r := aggs[k]
		rec := []string{
			r.Symbol,
			decimal.NewFromInt(int64(r.Trades)).String(),
			decimal.NewFromInt(int64(r.Rejected)).String(),
			r.BuyLots.String(),
			r.BuyValue.StringFixed(2),
			r.SellLots.String(),
			r.SellValue.StringFixed(2),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	return outPath, w.Error()
}

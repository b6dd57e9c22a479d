package tradelog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadBack(t *testing.T) {
	t.Setenv("COPIER_LOG_DIR", t.TempDir())

	err := Append(Entry{
		Symbol: "XAUUSD", Side: "buy", Volume: "0.1",
		Price: "2300.03", StopLoss: "2299.88", TakeProfit: "2310.00",
		Target: "TP1", RetCode: 10009,
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := TodayEntries()
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Symbol != "XAUUSD" || e.Side != "buy" || e.Target != "TP1" {
		t.Errorf("entry round trip mismatch: %+v", e)
	}
	if e.Time == "" {
		t.Error("append must stamp the entry")
	}
}

func TestAppendOutcomeGoesToSeparateFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COPIER_LOG_DIR", dir)

	err := AppendOutcome(OutcomeEntry{Kind: "PARSE_FAILURE", OK: false, Text: "preview"})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	day := time.Now().UTC().Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "outcomes", day+".txt")); err != nil {
		t.Errorf("outcome file missing: %v", err)
	}

	entries, err := TodayEntries()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("outcomes must not leak into the trade journal, got %d entries", len(entries))
	}
}

func TestCompressOlderGzipsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COPIER_LOG_DIR", dir)

	stale := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(stale, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale journal should be removed after compression")
	}
	if _, err := os.Stat(stale + ".gz"); err != nil {
		t.Errorf("compressed journal missing: %v", err)
	}
}

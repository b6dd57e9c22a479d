package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

// Entry is one submitted order as the terminal confirmed it.
type Entry struct {
	Time       string
	Symbol     string
	Side       string
	Volume     string
	Price      string
	StopLoss   string
	TakeProfit string
	Target     string // TP1 or TP2
	RetCode    int
	Comment    string         `json:",omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// OutcomeEntry is the engine's verdict for one inbound alert, success or
// failure, including parse failures and suppressed duplicates.
type OutcomeEntry struct {
	Time   string
	Kind   string
	OK     bool
	Symbol string `json:",omitempty"`
	Text   string
}

func logDir() string {
	if v := os.Getenv("COPIER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func dailyFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func outcomesFilepath(t time.Time) string {
	d := t.UTC().Format("2006-01-02")
	return filepath.Join(logDir(), "outcomes", d+".txt")
}

func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// Append writes a trade entry to today's journal file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

// AppendOutcome writes an outcome entry to today's outcome journal.
func AppendOutcome(e OutcomeEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(outcomesFilepath(now), e)
}

// TodayEntries reads back today's trade entries, newest last.
func TodayEntries() ([]Entry, error) {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.Open(dailyFilepath(time.Now().UTC()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	dec := json.NewDecoder(f)
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			break
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CompressOlder gzips journal files older than retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if info.ModTime().Before(cutoff) {
			compressFile(p)
		}
		return nil
	})
}

func compressFile(p string) {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		_ = os.Remove(p)
		return
	}

	in, err := os.Open(p)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err == nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(p)
	} else {
		_ = gw.Close()
		_ = out.Close()
	}
}

package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAlertPreviewKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("شراء ", 40)
	got := alertPreview(text)
	if !utf8.ValidString(got) {
		t.Fatalf("preview is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 100 {
		t.Errorf("expected 100 runes, got %d", n)
	}
}

func TestAlertPreviewShortTextUnchanged(t *testing.T) {
	if got := alertPreview("بيع EURUSD"); got != "بيع EURUSD" {
		t.Errorf("short text should pass through, got %q", got)
	}
}

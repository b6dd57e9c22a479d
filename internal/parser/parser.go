// Package parser turns informally-formatted channel alerts into structured
// trading signals. The alert head is an Arabic action keyword, an optional
// direction glyph and a dash, then the instrument symbol; prices follow as
// labeled fields. Format drift is handled by trying extraction strategies
// in priority order, the first success winning.
package parser

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/types"
)

// Parse stages, reported in ParseError.
const (
	StageHead  = "action_symbol"
	StageEntry = "entry"
	StageTP1   = "tp1"
)

// ParseError reports which extraction stage exhausted its strategies.
// Callers treat it as "no trade", log it and move on; it never aborts the
// alert loop.
type ParseError struct {
	Stage   string
	Preview string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("signal parse failed at %s: %q", e.Stage, e.Preview)
}

const (
	buyKeyword  = "شراء"
	sellKeyword = "بيع"
)

var (
	// Action keyword, optional colored glyph, a dash variant, then the symbol.
	reHead = regexp.MustCompile(`(` + buyKeyword + `|` + sellKeyword + `)\s*(?:🟢|🔴)?\s*(?:—|–|-)\s*([A-Z]+[A-Z0-9]*)`)

	// Fallback pieces matched independently anywhere in the text.
	reActionOnly  = regexp.MustCompile(`(` + buyKeyword + `|` + sellKeyword + `)`)
	reSymbolLoose = regexp.MustCompile(`([A-Z]{4,})`)

	reEntry     = regexp.MustCompile(`الدخول:\s*(\d+\.?\d*)`)
	reTP1Bullet = regexp.MustCompile(`•\s*TP1:\s*(\d+\.?\d*)`)
	reTP1Loose  = regexp.MustCompile(`TP1[:\s]*(\d+\.?\d*)`)
	reTP2Bullet = regexp.MustCompile(`•\s*TP2:\s*(\d+\.?\d*)`)
	reTP2Loose  = regexp.MustCompile(`TP2[:\s]*(\d+\.?\d*)`)
)

// headStrategy extracts the action and symbol from normalized text.
type headStrategy struct {
	name  string
	match func(text string) (types.Action, string, bool)
}

var headStrategies = []headStrategy{
	{name: "labeled", match: matchLabeledHead},
	{name: "loose", match: matchLooseHead},
}

func matchLabeledHead(text string) (types.Action, string, bool) {
	m := reHead.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return keywordAction(m[1]), m[2], true
}

func matchLooseHead(text string) (types.Action, string, bool) {
	am := reActionOnly.FindStringSubmatch(text)
	sm := reSymbolLoose.FindStringSubmatch(text)
	if am == nil || sm == nil {
		return "", "", false
	}
	return keywordAction(am[1]), sm[1], true
}

func keywordAction(kw string) types.Action {
	if kw == buyKeyword {
		return types.ActionBuy
	}
	return types.ActionSell
}

// firstPrice tries the patterns in order and returns the first matched
// price. Each pattern captures the numeric field in group 1.
func firstPrice(text string, patterns ...*regexp.Regexp) (decimal.Decimal, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		d, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

func preview(text string) string {
	const n = 120
	r := []rune(text)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// Parse extracts a Signal from one alert text. A valid result always has
// action, symbol, entry and TP1; TP2 is optional. Parsing the same text
// twice yields identical signals.
func Parse(text string) (types.Signal, error) {
	clean := Normalize(text)

	var sig types.Signal
	found := false
	for _, st := range headStrategies {
		if action, symbol, ok := st.match(clean); ok {
			sig.Action = action
			sig.Symbol = symbol
			found = true
			break
		}
	}
	if !found {
		return types.Signal{}, &ParseError{Stage: StageHead, Preview: preview(clean)}
	}

	// The entry field has no fallback: an alert without a readable entry
	// price cannot be traded.
	entry, ok := firstPrice(clean, reEntry)
	if !ok {
		return types.Signal{}, &ParseError{Stage: StageEntry, Preview: preview(clean)}
	}
	sig.Entry = entry

	tp1, ok := firstPrice(clean, reTP1Bullet, reTP1Loose)
	if !ok {
		return types.Signal{}, &ParseError{Stage: StageTP1, Preview: preview(clean)}
	}
	sig.TP1 = tp1

	if tp2, ok := firstPrice(clean, reTP2Bullet, reTP2Loose); ok {
		sig.TP2 = &tp2
	}

	return sig, nil
}

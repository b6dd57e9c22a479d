package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the trade direction extracted from an alert.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Opposite returns the closing direction for an open position.
func (a Action) Opposite() Action {
	if a == ActionBuy {
		return ActionSell
	}
	return ActionBuy
}

// Signal is one parsed alert. Entry and TP1 are always present; TP2 is
// optional and nil when the alert carried only one target.
type Signal struct {
	Action Action           `json:"action"`
	Symbol string           `json:"symbol"`
	Entry  decimal.Decimal  `json:"entry"`
	TP1    decimal.Decimal  `json:"tp1"`
	TP2    *decimal.Decimal `json:"tp2,omitempty"`
}

// Quote is the current bid/ask for a symbol.
type Quote struct {
	Symbol string
	Bid    decimal.Decimal
	Ask    decimal.Decimal
	Time   time.Time
}

// SymbolInfo carries the instrument metadata the executor needs.
type SymbolInfo struct {
	Name   string
	Point  decimal.Decimal // minimal price increment
	Digits int32
}

// Account is a snapshot of the terminal account.
type Account struct {
	Balance  decimal.Decimal
	Equity   decimal.Decimal
	Currency string
}

// Position is one open position reported by the terminal.
type Position struct {
	Ticket       int64
	Symbol       string
	Side         Action
	Volume       decimal.Decimal
	OpenPrice    decimal.Decimal
	CurrentPrice decimal.Decimal
	Profit       decimal.Decimal
}

// Magic tags every order this bot submits so terminal-side history can be
// filtered to its trades.
const Magic = 123456

// Deviation is the maximum price slippage, in points, accepted on fills.
const Deviation = 20

// Order lifetime and fill policy submitted with every request.
const (
	TimeGTC = "GTC" // good-till-cancelled
	FillIOC = "IOC" // immediate-or-cancel
)

// OrderRequest is a market order sent to the terminal. Ticket is non-zero
// when the order closes an existing position.
type OrderRequest struct {
	Symbol      string          `json:"symbol"`
	Side        Action          `json:"side"`
	Volume      decimal.Decimal `json:"volume"`
	Price       decimal.Decimal `json:"price"`
	StopLoss    decimal.Decimal `json:"sl,omitempty"`
	TakeProfit  decimal.Decimal `json:"tp,omitempty"`
	Ticket      int64           `json:"position,omitempty"`
	Deviation   int             `json:"deviation"`
	Magic       int             `json:"magic"`
	TimeInForce string          `json:"type_time,omitempty"`
	FillPolicy  string          `json:"type_filling,omitempty"`
	Comment     string          `json:"comment"`
	ClientID    string          `json:"client_id,omitempty"`
}

// RetCodeDone is the terminal confirmation code for a filled request
// (TRADE_RETCODE_DONE in MetaTrader 5).
const RetCodeDone = 10009

// OrderResult is the terminal's confirmation for one request.
type OrderResult struct {
	RetCode int    `json:"retcode"`
	Order   int64  `json:"order"`
	Deal    int64  `json:"deal"`
	Comment string `json:"comment"`
}

// Done reports whether the terminal confirmed the fill.
func (r OrderResult) Done() bool { return r.RetCode == RetCodeDone }

// OutcomeKind classifies how processing of one signal ended.
type OutcomeKind string

const (
	OutcomeExecuted      OutcomeKind = "EXECUTED"
	OutcomeInactive      OutcomeKind = "INACTIVE"
	OutcomeSafetyTripped OutcomeKind = "SAFETY_TRIPPED"
	OutcomeMarketData    OutcomeKind = "MARKET_DATA"
	OutcomeSpreadTooWide OutcomeKind = "SPREAD_TOO_WIDE"
	OutcomeRejected      OutcomeKind = "REJECTED"
	OutcomeParseFailure  OutcomeKind = "PARSE_FAILURE"
	OutcomeDuplicate     OutcomeKind = "DUPLICATE"
)

// Outcome is the result of processing one signal, delivered to the
// notification sink and the trade journal. Failures are values, not errors:
// the alert loop keeps running whatever happened here.
type Outcome struct {
	OK   bool        `json:"ok"`
	Kind OutcomeKind `json:"kind"`
	Text string      `json:"text"`
}

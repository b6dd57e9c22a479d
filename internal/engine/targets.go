package engine

import (
	"github.com/shopspring/decimal"

	"signal-copier-bot/internal/types"
)

var two = decimal.NewFromInt(2)

// chooseTarget picks between the signal's take-profit levels. With smart
// selection off or no TP2 on the signal, TP1 wins. Otherwise TP2 is chosen
// when its distance from entry is strictly less than twice the TP1
// distance, i.e. the extra reach still has a reasonable risk/reward.
// The label feeds the outcome message.
func chooseTarget(sig types.Signal, smart bool) (decimal.Decimal, string) {
	if !smart || sig.TP2 == nil {
		return sig.TP1, "TP1"
	}

	tp1Distance := sig.TP1.Sub(sig.Entry).Abs()
	tp2Distance := sig.TP2.Sub(sig.Entry).Abs()

	if tp2Distance.LessThan(tp1Distance.Mul(two)) {
		return *sig.TP2, "TP2"
	}
	return sig.TP1, "TP1"
}

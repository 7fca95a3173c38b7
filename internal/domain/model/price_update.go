// Package model holds the normalized record produced by every exchange
// session, independent of which venue it came from.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdate is the top-of-book record every parser normalizes into.
// bid/ask are decimal, not float64: the wire encoding fixes 8 fractional
// digits and a binary float cannot make that guarantee for arbitrary inputs.
type PriceUpdate struct {
	Exchange  string
	Pair      string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Timestamp time.Time
}

// New builds a PriceUpdate stamped with the local receipt time, not any
// venue-supplied time — the spec normalizes on local receipt only.
func New(exchange, pair string, bid, ask decimal.Decimal) PriceUpdate {
	return PriceUpdate{
		Exchange:  exchange,
		Pair:      pair,
		Bid:       bid,
		Ask:       ask,
		Timestamp: time.Now(),
	}
}

// Mid is (bid+ask)/2.
func (u PriceUpdate) Mid() decimal.Decimal {
	return u.Bid.Add(u.Ask).Div(decimal.NewFromInt(2))
}

// SpreadPercent is (ask-bid)/mid * 100. Crossed books (ask < bid) are not
// rejected; the value is simply negative in that case.
func (u PriceUpdate) SpreadPercent() decimal.Decimal {
	mid := u.Mid()
	if mid.IsZero() {
		return decimal.Zero
	}
	return u.Ask.Sub(u.Bid).Div(mid).Mul(decimal.NewFromInt(100))
}

// ToJSON renders the single-line wire form:
// {"exchange":"<name>","pair":"<canon>","bid":<num>,"ask":<num>,"timestamp":<ms>}
// bid/ask always carry exactly 8 fractional digits; the line is not
// terminated here — the fan-out server appends the LF delimiter.
func (u PriceUpdate) ToJSON() string {
	var b strings.Builder
	b.Grow(96)
	b.WriteString(`{"exchange":"`)
	b.WriteString(u.Exchange)
	b.WriteString(`","pair":"`)
	b.WriteString(u.Pair)
	b.WriteString(`","bid":`)
	b.WriteString(u.Bid.StringFixed(8))
	b.WriteString(`,"ask":`)
	b.WriteString(u.Ask.StringFixed(8))
	b.WriteString(`,"timestamp":`)
	b.WriteString(strconv.FormatInt(u.Timestamp.UnixMilli(), 10))
	b.WriteString(`}`)
	return b.String()
}

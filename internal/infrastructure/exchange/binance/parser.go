// Package binance implements the Binance bookTicker parser. The
// subscription is entirely URL-embedded (combined raw streams on the
// /ws/ path), so SubscribeMessage returns an empty string and the session
// goes straight from Subscribing to Streaming without a write.
package binance

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
	"mdaggregator/internal/domain/symbol"
)

const (
	Host = "stream.binance.com"
	Port = "9443"
	Path = "/ws/btcusdt@bookTicker/ethusdt@bookTicker/solusdt@bookTicker/xrpusdt@bookTicker"
)

type Parser struct {
	symbols *symbol.Map
}

func NewParser() port.Parser {
	return &Parser{symbols: symbol.ForVenue(symbol.Binance)}
}

func (p *Parser) SubscribeMessage() string { return "" }

// The quantity keys B and A have their own fields so that encoding/json's
// case-insensitive key matching cannot write them into Bid and Ask.
type bookTicker struct {
	Symbol string `json:"s"`
	Bid    string `json:"b"`
	BidQty string `json:"B"`
	Ask    string `json:"a"`
	AskQty string `json:"A"`
}

func (p *Parser) Parse(frame []byte) (model.PriceUpdate, bool) {
	var t bookTicker
	if err := json.Unmarshal(frame, &t); err != nil {
		return model.PriceUpdate{}, false
	}
	if t.Symbol == "" || t.Bid == "" || t.Ask == "" {
		return model.PriceUpdate{}, false
	}
	canon, ok := p.symbols.Canonical(strings.ToLower(t.Symbol))
	if !ok {
		return model.PriceUpdate{}, false
	}
	bid, err := decimal.NewFromString(t.Bid)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	ask, err := decimal.NewFromString(t.Ask)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	return model.New(symbol.Binance, canon, bid, ask), true
}

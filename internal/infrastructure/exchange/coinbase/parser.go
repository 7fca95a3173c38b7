// Package coinbase implements the Coinbase Exchange ticker parser.
package coinbase

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
	"mdaggregator/internal/domain/symbol"
)

const (
	Host = "ws-feed.exchange.coinbase.com"
	Port = "443"
	Path = "/"
)

type Parser struct {
	symbols *symbol.Map
}

func NewParser() port.Parser {
	return &Parser{symbols: symbol.ForVenue(symbol.Coinbase)}
}

type subscribeRequest struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

func (p *Parser) SubscribeMessage() string {
	req := subscribeRequest{
		Type:       "subscribe",
		ProductIDs: p.symbols.NativePairs(),
		Channels:   []string{"ticker"},
	}
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}

type tickerFrame struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
}

func (p *Parser) Parse(frame []byte) (model.PriceUpdate, bool) {
	var f tickerFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return model.PriceUpdate{}, false
	}
	if f.Type != "ticker" || f.ProductID == "" || f.BestBid == "" || f.BestAsk == "" {
		return model.PriceUpdate{}, false
	}
	canon, ok := p.symbols.Canonical(f.ProductID)
	if !ok {
		return model.PriceUpdate{}, false
	}
	bid, err := decimal.NewFromString(f.BestBid)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	ask, err := decimal.NewFromString(f.BestAsk)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	return model.New(symbol.Coinbase, canon, bid, ask), true
}

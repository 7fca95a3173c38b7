// Package okx implements the OKX v5 public tickers channel parser.
package okx

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
	"mdaggregator/internal/domain/symbol"
)

const (
	Host = "ws.okx.com"
	Port = "8443"
	Path = "/ws/v5/public"
)

type Parser struct {
	symbols *symbol.Map
}

func NewParser() port.Parser {
	return &Parser{symbols: symbol.ForVenue(symbol.OKX)}
}

type subscribeArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

type subscribeRequest struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

func (p *Parser) SubscribeMessage() string {
	native := p.symbols.NativePairs()
	args := make([]subscribeArg, 0, len(native))
	for _, n := range native {
		args = append(args, subscribeArg{Channel: "tickers", InstID: n})
	}
	b, err := json.Marshal(subscribeRequest{Op: "subscribe", Args: args})
	if err != nil {
		return ""
	}
	return string(b)
}

type tickerData struct {
	InstID string `json:"instId"`
	BidPx  string `json:"bidPx"`
	AskPx  string `json:"askPx"`
}

type tickerFrame struct {
	Data []tickerData `json:"data"`
}

func (p *Parser) Parse(frame []byte) (model.PriceUpdate, bool) {
	var f tickerFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return model.PriceUpdate{}, false
	}
	if len(f.Data) == 0 {
		return model.PriceUpdate{}, false
	}
	d := f.Data[0]
	if d.InstID == "" || d.BidPx == "" || d.AskPx == "" {
		return model.PriceUpdate{}, false
	}
	canon, ok := p.symbols.Canonical(d.InstID)
	if !ok {
		return model.PriceUpdate{}, false
	}
	bid, err := decimal.NewFromString(d.BidPx)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	ask, err := decimal.NewFromString(d.AskPx)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	return model.New(symbol.OKX, canon, bid, ask), true
}

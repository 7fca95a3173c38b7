// Package bybit implements the Bybit v5 public spot ticker parser.
package bybit

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
	"mdaggregator/internal/domain/symbol"
)

const (
	Host = "stream.bybit.com"
	Port = "443"
	Path = "/v5/public/spot"
)

type Parser struct {
	symbols *symbol.Map
}

func NewParser() port.Parser {
	return &Parser{symbols: symbol.ForVenue(symbol.Bybit)}
}

type subscribeRequest struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

func (p *Parser) SubscribeMessage() string {
	native := p.symbols.NativePairs()
	args := make([]string, 0, len(native))
	for _, n := range native {
		args = append(args, "tickers."+n)
	}
	b, err := json.Marshal(subscribeRequest{Op: "subscribe", Args: args})
	if err != nil {
		return ""
	}
	return string(b)
}

type tickerData struct {
	Symbol    string `json:"symbol"`
	Bid1Price string `json:"bid1Price"`
	Ask1Price string `json:"ask1Price"`
}

type tickerFrame struct {
	Topic string     `json:"topic"`
	Data  tickerData `json:"data"`
}

func (p *Parser) Parse(frame []byte) (model.PriceUpdate, bool) {
	var f tickerFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return model.PriceUpdate{}, false
	}
	if !strings.HasPrefix(f.Topic, "tickers.") || f.Data.Symbol == "" {
		return model.PriceUpdate{}, false
	}
	if f.Data.Bid1Price == "" || f.Data.Ask1Price == "" {
		return model.PriceUpdate{}, false
	}
	canon, ok := p.symbols.Canonical(strings.ToUpper(f.Data.Symbol))
	if !ok {
		return model.PriceUpdate{}, false
	}
	bid, err := decimal.NewFromString(f.Data.Bid1Price)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	ask, err := decimal.NewFromString(f.Data.Ask1Price)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	return model.New(symbol.Bybit, canon, bid, ask), true
}

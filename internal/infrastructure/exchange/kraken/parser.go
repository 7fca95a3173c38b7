// Package kraken implements the Kraken ticker parser. Kraken frames a
// single connection's multiple channels as a top-level JSON array rather
// than a tagged object, so Parse first tries to decode the frame as
// []json.RawMessage and treats any object frame (subscribe acks,
// heartbeats) as a non-match.
package kraken

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/model"
	"mdaggregator/internal/domain/symbol"
)

const (
	Host = "ws.kraken.com"
	Port = "443"
	Path = "/"
)

type Parser struct {
	symbols *symbol.Map
}

func NewParser() port.Parser {
	return &Parser{symbols: symbol.ForVenue(symbol.Kraken)}
}

type subscribeRequest struct {
	Event        string              `json:"event"`
	Pair         []string            `json:"pair"`
	Subscription subscriptionPayload `json:"subscription"`
}

type subscriptionPayload struct {
	Name string `json:"name"`
}

func (p *Parser) SubscribeMessage() string {
	req := subscribeRequest{
		Event:        "subscribe",
		Pair:         p.symbols.NativePairs(),
		Subscription: subscriptionPayload{Name: "ticker"},
	}
	b, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	return string(b)
}

// b and a mix strings and numbers ([price, wholeLotVolume, lotVolume]), so
// the elements are kept raw and only the price string is decoded.
type tickerData struct {
	Bid []json.RawMessage `json:"b"`
	Ask []json.RawMessage `json:"a"`
}

// Parse handles the [channelID, data, "ticker", pair] array shape. Per
// the design notes, the last array element is taken as the pair; this is
// fragile if Kraken ever reorders the trailer, but matches the documented
// frame shape exactly.
func (p *Parser) Parse(frame []byte) (model.PriceUpdate, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		return model.PriceUpdate{}, false
	}
	if len(raw) < 4 {
		return model.PriceUpdate{}, false
	}

	var channelName string
	if err := json.Unmarshal(raw[2], &channelName); err != nil || channelName != "ticker" {
		return model.PriceUpdate{}, false
	}

	var pair string
	if err := json.Unmarshal(raw[len(raw)-1], &pair); err != nil {
		return model.PriceUpdate{}, false
	}

	var data tickerData
	if err := json.Unmarshal(raw[1], &data); err != nil {
		return model.PriceUpdate{}, false
	}
	if len(data.Bid) == 0 || len(data.Ask) == 0 {
		return model.PriceUpdate{}, false
	}

	canon, ok := p.symbols.Canonical(strings.ToUpper(pair))
	if !ok {
		return model.PriceUpdate{}, false
	}

	var bidStr, askStr string
	if err := json.Unmarshal(data.Bid[0], &bidStr); err != nil {
		return model.PriceUpdate{}, false
	}
	if err := json.Unmarshal(data.Ask[0], &askStr); err != nil {
		return model.PriceUpdate{}, false
	}

	bid, err := decimal.NewFromString(bidStr)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	ask, err := decimal.NewFromString(askStr)
	if err != nil {
		return model.PriceUpdate{}, false
	}
	return model.New(symbol.Kraken, canon, bid, ask), true
}

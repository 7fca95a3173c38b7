package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestToJSONShape(t *testing.T) {
	u := PriceUpdate{
		Exchange:  "Binance",
		Pair:      "BTC/USDT",
		Bid:       decimal.RequireFromString("27000.1"),
		Ask:       decimal.RequireFromString("27000.2"),
		Timestamp: time.UnixMilli(1700000000123),
	}
	line := u.ToJSON()

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("not valid JSON: %v", err)
	}
	for _, key := range []string{"exchange", "pair", "bid", "ask", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, line)
		}
	}
	want := `{"exchange":"Binance","pair":"BTC/USDT","bid":27000.10000000,"ask":27000.20000000,"timestamp":1700000000123}`
	if line != want {
		t.Fatalf("got %s want %s", line, want)
	}
}

func TestMidAndSpread(t *testing.T) {
	u := New("Binance", "BTC/USDT", decimal.RequireFromString("100"), decimal.RequireFromString("102"))
	if u.Mid().String() != "101" {
		t.Fatalf("mid = %s", u.Mid().String())
	}
	spread := u.SpreadPercent()
	want := decimal.RequireFromString("2").Div(decimal.RequireFromString("101")).Mul(decimal.NewFromInt(100))
	if !spread.Equal(want) {
		t.Fatalf("spread = %s want %s", spread.String(), want.String())
	}
}

func TestCrossedBookPassesThrough(t *testing.T) {
	u := New("Kraken", "ETH/USDT", decimal.RequireFromString("100"), decimal.RequireFromString("99"))
	if u.SpreadPercent().IsPositive() {
		t.Fatal("expected a negative spread for a crossed book, not rejection")
	}
}

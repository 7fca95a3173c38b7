package bybit

import "testing"

func TestParseTick(t *testing.T) {
	p := NewParser()
	frame := []byte(`{"topic":"tickers.XRPUSDT","type":"snapshot","data":{"symbol":"XRPUSDT","bid1Price":"0.5010","ask1Price":"0.5013"}}`)
	u, ok := p.Parse(frame)
	if !ok {
		t.Fatal("expected a match")
	}
	if u.Pair != "XRP/USDT" {
		t.Fatalf("pair = %s", u.Pair)
	}
	if u.Bid.StringFixed(4) != "0.5010" {
		t.Fatalf("bid = %s", u.Bid.String())
	}
	if u.Ask.String() != "0.5013" {
		t.Fatalf("ask = %s", u.Ask.String())
	}
}

func TestParseToleratesUnrelatedFrames(t *testing.T) {
	p := NewParser()
	cases := [][]byte{
		[]byte(`{"success":true,"ret_msg":"","op":"subscribe"}`),
		[]byte(`{"topic":"tickers.DOGEUSDT","data":{"symbol":"DOGEUSDT","bid1Price":"1","ask1Price":"2"}}`),
		[]byte(`not json`),
	}
	for _, c := range cases {
		if _, ok := p.Parse(c); ok {
			t.Fatalf("expected no match for %s", c)
		}
	}
}

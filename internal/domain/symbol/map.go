// Package symbol holds the canonical <-> venue-native symbol bijections.
//
// The upstream teacher package expressed this as a generic suffix-append
// CommonSymbolConverter (BTC + quote -> BTCUSDT). That scheme cannot express
// Kraken's XBT rename or Coinbase/OKX's hyphenated spelling, so this package
// replaces it with an explicit lookup table over the closed set of pairs
// this system supports.
package symbol

// Venue names, matched against PriceUpdate.Exchange.
const (
	Binance  = "Binance"
	Kraken   = "Kraken"
	Coinbase = "Coinbase"
	Bybit    = "Bybit"
	OKX      = "OKX"
)

// Canonical pairs, BASE/QUOTE with QUOTE always USDT.
const (
	BTCUSDT = "BTC/USDT"
	ETHUSDT = "ETH/USDT"
	SOLUSDT = "SOL/USDT"
	XRPUSDT = "XRP/USDT"
)

var canonicalPairs = []string{BTCUSDT, ETHUSDT, SOLUSDT, XRPUSDT}

// native holds, per venue, the venue-native spelling for each canonical pair.
var native = map[string]map[string]string{
	Binance: {
		BTCUSDT: "btcusdt",
		ETHUSDT: "ethusdt",
		SOLUSDT: "solusdt",
		XRPUSDT: "xrpusdt",
	},
	Kraken: {
		BTCUSDT: "XBT/USDT",
		ETHUSDT: "ETH/USDT",
		SOLUSDT: "SOL/USDT",
		XRPUSDT: "XRP/USDT",
	},
	Coinbase: {
		BTCUSDT: "BTC-USDT",
		ETHUSDT: "ETH-USDT",
		SOLUSDT: "SOL-USDT",
		XRPUSDT: "XRP-USDT",
	},
	Bybit: {
		BTCUSDT: "BTCUSDT",
		ETHUSDT: "ETHUSDT",
		SOLUSDT: "SOLUSDT",
		XRPUSDT: "XRPUSDT",
	},
	OKX: {
		BTCUSDT: "BTC-USDT",
		ETHUSDT: "ETH-USDT",
		SOLUSDT: "SOL-USDT",
		XRPUSDT: "XRP-USDT",
	},
}

// Map is a bidirectional symbol table for one venue.
type Map struct {
	venue    string
	toNative map[string]string
	toCanon  map[string]string
}

// ForVenue builds the bijection for one venue. Panics if the venue is
// unknown: this is a programming error, never a runtime condition.
func ForVenue(venue string) *Map {
	table, ok := native[venue]
	if !ok {
		panic("symbol: unknown venue " + venue)
	}
	m := &Map{
		venue:    venue,
		toNative: make(map[string]string, len(table)),
		toCanon:  make(map[string]string, len(table)),
	}
	for canon, ven := range table {
		m.toNative[canon] = ven
		m.toCanon[ven] = canon
	}
	return m
}

// Venue returns the venue name this map was built for.
func (m *Map) Venue() string { return m.venue }

// Native returns the venue-native spelling of a canonical pair.
func (m *Map) Native(canonical string) (string, bool) {
	v, ok := m.toNative[canonical]
	return v, ok
}

// Canonical returns the canonical pair for a venue-native symbol. A miss
// means the symbol is unknown to this venue and the caller must drop the
// frame silently.
func (m *Map) Canonical(native string) (string, bool) {
	c, ok := m.toCanon[native]
	return c, ok
}

// CanonicalPairs lists the four pairs every venue supports.
func CanonicalPairs() []string {
	out := make([]string, len(canonicalPairs))
	copy(out, canonicalPairs)
	return out
}

// NativePairs lists every venue-native spelling for a venue, in the same
// order as CanonicalPairs.
func (m *Map) NativePairs() []string {
	out := make([]string, 0, len(canonicalPairs))
	for _, c := range canonicalPairs {
		out = append(out, m.toNative[c])
	}
	return out
}

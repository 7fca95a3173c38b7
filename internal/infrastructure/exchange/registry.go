// Package exchange is the factory registry for the five venue parsers
// (C3), adapted from the teacher's internal/infrastructure/pricefeed
// registry: each venue package self-registers its endpoint and a Parser
// factory from an init() function, and the supervisor looks venues up by
// name instead of importing all five concrete packages directly.
package exchange

import (
	"github.com/rs/zerolog/log"

	"mdaggregator/internal/application/port"
)

// Entry pairs a venue's dial target with the constructor for its parser.
type Entry struct {
	Endpoint port.Endpoint
	New      func() port.Parser
}

var registry = make(map[string]Entry)

// Register is called by each venue package's init(). Re-registering a
// venue overwrites the previous entry and logs a warning, matching the
// teacher's pricefeed.Register behavior.
func Register(venue string, endpoint port.Endpoint, factory func() port.Parser) {
	if factory == nil {
		log.Warn().Str("venue", venue).Msg("invalid parser factory")
		return
	}
	if _, exists := registry[venue]; exists {
		log.Warn().Str("venue", venue).Msg("parser already registered, overwriting")
	}
	registry[venue] = Entry{Endpoint: endpoint, New: factory}
}

// Get looks up the registered entry for a venue name.
func Get(venue string) (Entry, bool) {
	e, ok := registry[venue]
	return e, ok
}

// Venues lists every registered venue name.
func Venues() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	return out
}

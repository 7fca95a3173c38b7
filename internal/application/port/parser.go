// Package port declares the interfaces that connect the session state
// machine (C2) to the per-venue parsers (C3) and the fan-out server (C5),
// mirroring the teacher's own application/port boundary.
package port

import "mdaggregator/internal/domain/model"

// Parser supplies the two venue-specific operations a session needs: the
// subscription payload to send once the WS handshake completes, and a
// function that turns one inbound frame into a PriceUpdate.
//
// SubscribeMessage returns an empty string when the subscription is
// implicit in the URL path (Binance); the session then skips straight to
// Streaming without a write.
//
// Parse must be tolerant of frames that are not ticks at all — control
// messages, heartbeats, subscribe acks. It returns ok=false for anything
// it doesn't recognize, never an error; a malformed or unrelated frame is
// not a failure of the connection.
type Parser interface {
	SubscribeMessage() string
	Parse(frame []byte) (update model.PriceUpdate, ok bool)
}

// Endpoint describes where and how a session dials one venue.
type Endpoint struct {
	Host string
	Port string
	Path string
}

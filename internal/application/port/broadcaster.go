package port

import "mdaggregator/internal/domain/model"

// Broadcaster is the single sink every session's callback is wired to.
// The fan-out server implements this.
type Broadcaster interface {
	Broadcast(update model.PriceUpdate)
}

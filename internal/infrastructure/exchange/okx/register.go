package okx

import (
	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/symbol"
	"mdaggregator/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(symbol.OKX, port.Endpoint{Host: Host, Port: Port, Path: Path}, NewParser)
}

package bybit

import (
	"mdaggregator/internal/application/port"
	"mdaggregator/internal/domain/symbol"
	"mdaggregator/internal/infrastructure/exchange"
)

func init() {
	exchange.Register(symbol.Bybit, port.Endpoint{Host: Host, Port: Port, Path: Path}, NewParser)
}

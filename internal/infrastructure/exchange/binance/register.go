package binance

import (
	"mdaggregator/internal/application/port"
	"mdaggregator/internal/infrastructure/exchange"
	"mdaggregator/internal/domain/symbol"
)

func init() {
	exchange.Register(symbol.Binance, port.Endpoint{Host: Host, Port: Port, Path: Path}, NewParser)
}

package middleware

import (
	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/market"
)

type MonitorFlags uint8

const (
	MonitorNone MonitorFlags = 1 << iota
	MonitorAll
	MonitorTicks
	MonitorStructural
)

type Monitor struct {
	logger *zap.Logger
	flags  MonitorFlags
}

func NewMonitor(logger *zap.Logger, flags MonitorFlags) *Monitor {
	return &Monitor{logger: logger, flags: flags}
}

func (m *Monitor) WithUpdate(next market.Listener) market.Listener {
	return func(u market.Update) {
		switch {
		case u.Tick != nil:
			if m.flags&(MonitorTicks|MonitorAll) != 0 {
				m.logger.Info("tick",
					zap.String("pair", u.Pair),
					zap.String("price", u.Tick.Price.String()))
			}
		default:
			if m.flags&(MonitorStructural|MonitorAll) != 0 {
				m.logger.Info("series update",
					zap.String("pair", u.Pair),
					zap.String("timeframe", string(u.Timeframe)),
					zap.Int("candles", len(u.Candles)))
			}
		}
		next(u)
	}
}

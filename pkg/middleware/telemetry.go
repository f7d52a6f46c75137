// Package middleware decorates market listeners with cross-cutting concerns
// so consumers stay free of counting and logging noise.
package middleware

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/market"
)

type Telemetry struct {
	logger *zap.Logger

	structuralUpdates atomic.Int64
	tickUpdates       atomic.Int64
}

func NewTelemetry(logger *zap.Logger) *Telemetry {
	return &Telemetry{logger: logger}
}

func (t *Telemetry) WithUpdate(next market.Listener) market.Listener {
	return func(u market.Update) {
		if u.Tick != nil {
			t.tickUpdates.Add(1)
		} else {
			t.structuralUpdates.Add(1)
		}
		next(u)
	}
}

func (t *Telemetry) PrintStatistics() {
	t.logger.Info("market feed statistics",
		zap.Int64("tick_updates", t.tickUpdates.Load()),
		zap.Int64("structural_updates", t.structuralUpdates.Load()))
}

package market

import (
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// regenerateLocked rebuilds the seed series as a mean-reverting random walk
// anchored at the pair's base price and resets the current price to the
// walk's terminus. Caller holds s.mu.
func (s *Simulator) regenerateLocked() {
	base := s.cfg.Anchor(s.pair)
	count := s.cfg.SeedCount
	pull := fixed.FromFloat64(s.cfg.SeedMeanReversion * 0.1)

	price := base
	t := s.clk.Now().Unix() - int64(count)*s.interval
	candles := make([]common.Candle, 0, count)

	for i := 0; i < count; i++ {
		drift := base.Sub(price).Mul(pull)
		shock := (s.rng.Float64() - 0.5) * 2 * s.cfg.SeedVolatility
		open := price
		price = price.Add(price.Mul(fixed.FromFloat64(shock))).Add(drift)

		high := fixed.Max(open, price).Mul(fixed.FromFloat64(1 + s.rng.Float64()*0.0005))
		low := fixed.Min(open, price).Mul(fixed.FromFloat64(1 - s.rng.Float64()*0.0005))
		volume := fixed.FromFloat64(s.rng.Float64()*500_000 + 50_000)

		candles = append(candles, common.Candle{
			Time:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: volume,
		})
		t += s.interval
	}

	s.candles = candles
	s.price = price
}

// Package market owns the synthetic price and candle state per trading pair
// and timeframe. It is the only writer of the candle buffer and the current
// price; everything else observes snapshots through Subscribe or accessors.
package market

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/utility/clock"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Update is one broadcast payload. Tick is nil on structural updates (seed
// regeneration, candle rollover); candles are always a fresh copy.
type Update struct {
	Pair      string           `json:"pair"`
	Timeframe common.Timeframe `json:"timeframe"`
	Candles   []common.Candle  `json:"candles"`
	Tick      *common.Tick     `json:"tick,omitempty"`
}

type Listener func(Update)

type subscriber struct {
	id int
	fn Listener
}

type Option func(*Simulator)

func WithClock(clk clock.Clock) Option {
	return func(s *Simulator) { s.clk = clk }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// Simulator generates the synthetic market. Timers run only while at least
// one subscriber is registered.
type Simulator struct {
	logger *zap.Logger
	cfg    Config
	clk    clock.Clock
	rng    *rand.Rand

	// mu guards all mutable state below. emitMu serializes broadcasts so
	// a structural update is always observed before ticks of the series
	// it introduced.
	mu     sync.Mutex
	emitMu sync.Mutex

	pair      string
	timeframe common.Timeframe
	interval  int64
	candles   []common.Candle
	price     fixed.Point
	lastQuote time.Time

	subs      []subscriber
	nextSubID int

	running       bool
	timerGen      int
	tickTimer     clock.Timer
	rolloverTimer clock.Timer
}

func NewSimulator(logger *zap.Logger, cfg Config, options ...Option) *Simulator {
	s := &Simulator{
		logger: logger,
		cfg:    cfg.Normalize(),
		clk:    clock.System(),
	}

	for _, option := range options {
		option(s)
	}

	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.pair = s.cfg.DefaultPair
	s.timeframe = s.cfg.DefaultTimeframe
	s.interval = s.cfg.Interval(s.timeframe)
	s.regenerateLocked()
	s.lastQuote = s.clk.Now()

	return s
}

// SetPair switches the active pair, regenerates the seed series anchored to
// the pair's base price and broadcasts a structural update.
func (s *Simulator) SetPair(symbol string) {
	s.mu.Lock()
	s.pair = symbol
	s.regenerateLocked()
	s.logger.Debug("pair switched",
		zap.String("pair", symbol),
		zap.String("price", s.price.String()))
	s.emitLocked(nil)
}

// SetTimeframe switches the candle bucket width, regenerates the series and
// restarts the rollover timer when running.
func (s *Simulator) SetTimeframe(tf common.Timeframe) {
	s.mu.Lock()
	s.timeframe = tf
	s.interval = s.cfg.Interval(tf)
	s.regenerateLocked()
	if s.running {
		s.restartRolloverLocked()
	}
	s.logger.Debug("timeframe switched",
		zap.String("timeframe", string(tf)),
		zap.Int64("interval_seconds", s.interval))
	s.emitLocked(nil)
}

// Subscribe registers fn, delivers the current snapshot to it immediately and
// returns the matching unsubscribe. Timers start on the first subscriber and
// stop on the last unsubscribe; no background work runs while unobserved.
func (s *Simulator) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	if len(s.subs) == 1 {
		s.startTimersLocked()
	}

	update := s.snapshotLocked(nil)
	s.emitMu.Lock()
	s.mu.Unlock()
	fn(update)
	s.emitMu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		if len(s.subs) == 0 && s.running {
			s.stopTimersLocked()
		}
	}
}

func (s *Simulator) CurrentPrice() fixed.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

func (s *Simulator) Candles() []common.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]common.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

func (s *Simulator) Pair() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

func (s *Simulator) Timeframe() common.Timeframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeframe
}

// LastQuoteAt is the time of the most recent broadcast. Risk evaluation
// compares it against the staleness threshold.
func (s *Simulator) LastQuoteAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuote
}

func (s *Simulator) startTimersLocked() {
	s.running = true
	s.timerGen++
	gen := s.timerGen
	s.tickTimer = s.clk.AfterFunc(s.nextTickIntervalLocked(), func() { s.onTick(gen) })
	s.rolloverTimer = s.clk.AfterFunc(s.rolloverIntervalLocked(), func() { s.onRollover(gen) })
	s.logger.Debug("timers started", zap.String("pair", s.pair))
}

func (s *Simulator) stopTimersLocked() {
	s.running = false
	s.timerGen++
	if s.tickTimer != nil {
		s.tickTimer.Stop()
		s.tickTimer = nil
	}
	if s.rolloverTimer != nil {
		s.rolloverTimer.Stop()
		s.rolloverTimer = nil
	}
	s.logger.Debug("timers stopped", zap.String("pair", s.pair))
}

func (s *Simulator) restartRolloverLocked() {
	if s.rolloverTimer != nil {
		s.rolloverTimer.Stop()
	}
	gen := s.timerGen
	s.rolloverTimer = s.clk.AfterFunc(s.rolloverIntervalLocked(), func() { s.onRollover(gen) })
}

func (s *Simulator) nextTickIntervalLocked() time.Duration {
	jitter := time.Duration(0)
	if s.cfg.TickIntervalJitter > 0 {
		jitter = time.Duration(s.rng.Int63n(int64(s.cfg.TickIntervalJitter)))
	}
	return s.cfg.TickIntervalFloor + jitter
}

func (s *Simulator) rolloverIntervalLocked() time.Duration {
	return time.Duration(s.interval) * time.Second
}

// onTick nudges the current price, folds it into the in-progress candle and
// broadcasts a tick payload alongside the candle snapshot.
func (s *Simulator) onTick(gen int) {
	s.mu.Lock()
	if !s.running || gen != s.timerGen {
		s.mu.Unlock()
		return
	}

	delta := (s.rng.Float64() - 0.5) * 2 * s.cfg.TickVolatility
	s.price = s.price.Add(s.price.Mul(fixed.FromFloat64(delta)))

	if n := len(s.candles); n > 0 {
		last := &s.candles[n-1]
		last.Close = s.price
		last.High = fixed.Max(last.High, s.price)
		last.Low = fixed.Min(last.Low, s.price)
		last.Volume = last.Volume.Add(fixed.FromFloat64(s.rng.Float64() * 1000))
	}

	tick := &common.Tick{Price: s.price, TimeStamp: s.clk.Now()}
	s.tickTimer = s.clk.AfterFunc(s.nextTickIntervalLocked(), func() { s.onTick(gen) })
	s.emitLocked(tick)
}

// onRollover seals the in-progress candle by appending a new one opening at
// the current price, evicting the oldest beyond capacity.
func (s *Simulator) onRollover(gen int) {
	s.mu.Lock()
	if !s.running || gen != s.timerGen {
		s.mu.Unlock()
		return
	}

	nextTime := s.clk.Now().Unix()
	if n := len(s.candles); n > 0 {
		nextTime = s.candles[n-1].Time + s.interval
	}
	s.candles = append(s.candles, common.Candle{
		Time:   nextTime,
		Open:   s.price,
		High:   s.price,
		Low:    s.price,
		Close:  s.price,
		Volume: fixed.Zero,
	})
	if len(s.candles) > s.cfg.Capacity {
		s.candles = s.candles[len(s.candles)-s.cfg.Capacity:]
	}

	s.rolloverTimer = s.clk.AfterFunc(s.rolloverIntervalLocked(), func() { s.onRollover(gen) })
	s.emitLocked(nil)
}

func (s *Simulator) snapshotLocked(tick *common.Tick) Update {
	candles := make([]common.Candle, len(s.candles))
	copy(candles, s.candles)
	return Update{
		Pair:      s.pair,
		Timeframe: s.timeframe,
		Candles:   candles,
		Tick:      tick,
	}
}

// emitLocked is called with mu held and releases it. The payload and the
// listener set are captured atomically; fan-out happens under emitMu only,
// so registry changes made by a listener do not affect the in-flight
// iteration. A listener may read the accessors only while no writer is
// waiting to broadcast: writers keep holding mu while parked on emitMu, so
// an accessor call racing a SetPair, SetTimeframe or Subscribe would
// deadlock. Listeners that need state during fan-out should use the Update
// payload instead.
func (s *Simulator) emitLocked(tick *common.Tick) {
	s.lastQuote = s.clk.Now()
	update := s.snapshotLocked(tick)
	targets := make([]subscriber, len(s.subs))
	copy(targets, s.subs)

	s.emitMu.Lock()
	s.mu.Unlock()
	for _, sub := range targets {
		sub.fn(update)
	}
	s.emitMu.Unlock()
}

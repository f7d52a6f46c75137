// Package feed exposes the simulated market over a websocket endpoint. Each
// connection receives the full update stream as JSON frames; slow readers are
// dropped-on rather than allowed to stall the broadcaster.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/solterminal/solterminal/pkg/book"
	"github.com/solterminal/solterminal/pkg/common"
	"github.com/solterminal/solterminal/pkg/exec"
	"github.com/solterminal/solterminal/pkg/indicators"
	"github.com/solterminal/solterminal/pkg/market"
	"github.com/solterminal/solterminal/pkg/portfolio"
	"github.com/solterminal/solterminal/pkg/utility"
	"github.com/solterminal/solterminal/pkg/utility/fixed"
)

// Frame is one outbound message. Book and the chart overlays are attached to
// every frame so clients never have to join multiple streams.
type Frame struct {
	Type        string                    `json:"type"` // "tick" or "series"
	ExecutionID string                    `json:"execution_id"`
	Pair        string                    `json:"pair"`
	Timeframe   common.Timeframe          `json:"timeframe"`
	Candles     []common.Candle           `json:"candles"`
	Tick        *common.Tick              `json:"tick,omitempty"`
	Book        *common.OrderBookSnapshot `json:"book,omitempty"`
	Atr         *fixed.Point              `json:"atr,omitempty"`
	CloseZScore *fixed.Point              `json:"close_zscore,omitempty"`
}

const (
	atrWindow    = 14
	zscoreWindow = 20
)

type Server struct {
	logger   *zap.Logger
	eid      string
	mkt      *market.Simulator
	books    *book.Synthesizer
	executor *exec.Simulator
	ledger   *portfolio.Ledger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*connection]struct{}
}

func NewServer(logger *zap.Logger, mkt *market.Simulator, books *book.Synthesizer, executor *exec.Simulator, ledger *portfolio.Ledger) *Server {
	return &Server{
		logger:   logger,
		eid:      utility.GetExecutionID().String(),
		mkt:      mkt,
		books:    books,
		executor: executor,
		ledger:   ledger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*connection]struct{}),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWs)
	mux.HandleFunc("/orders", s.handleOrders)
	mux.HandleFunc("/orders/evaluate", s.handleEvaluate)
	mux.HandleFunc("/portfolio", s.handlePortfolio)
	mux.HandleFunc("/market/pair", s.handleSetPair)
	mux.HandleFunc("/market/timeframe", s.handleSetTimeframe)
	return mux
}

// Run serves the feed on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("feed listening", zap.String("addr", addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.closeAll()
		return nil
	case err := <-errChan:
		return err
	}
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := newConnection(wsConn, s.logger)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	unsubscribe := s.mkt.Subscribe(func(u market.Update) {
		c.send(s.frame(u))
	})

	c.start()
	s.logger.Info("feed client connected", zap.String("remote", wsConn.RemoteAddr().String()))

	go func() {
		<-c.done()
		unsubscribe()
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		s.logger.Info("feed client disconnected", zap.String("remote", wsConn.RemoteAddr().String()))
	}()
}

func (s *Server) frame(u market.Update) Frame {
	f := Frame{
		Type:        "series",
		ExecutionID: s.eid,
		Pair:        u.Pair,
		Timeframe:   u.Timeframe,
		Candles:     u.Candles,
		Tick:        u.Tick,
	}
	if u.Tick != nil {
		f.Type = "tick"
	}
	if snap, ok := s.books.Snapshot(); ok {
		f.Book = &snap
	}
	if atr, ok := indicators.SeriesAtr(u.Candles, atrWindow); ok {
		f.Atr = &atr
	}
	if z, ok := indicators.CloseZScore(u.Candles, zscoreWindow); ok {
		f.CloseZScore = &z
	}
	return f
}

// handleOrders submits an order and blocks until it resolves. A rejected
// request returns 422 with the violation list; the simulated latency keeps
// the response well under typical client timeouts.
func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request common.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := s.executor.Submit(request)
	if err != nil {
		var vErr *exec.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      vErr.Error(),
				"violations": vErr.Violations,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	select {
	case result := <-results:
		writeJSON(w, http.StatusOK, result)
	case <-r.Context().Done():
	}
}

// handleEvaluate runs the pre-trade checks without submitting.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request common.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.executor.Evaluate(request))
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"balances":       s.ledger.Balances(),
		"positions":      s.ledger.Positions(),
		"recent_trades":  s.ledger.RecentTrades(),
		"pending_orders": s.ledger.PendingOrders(),
		"equity_curve":   s.ledger.EquityCurve(),
		"recent_pairs":   s.ledger.RecentPairs(),
	})
}

func (s *Server) handleSetPair(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Pair string `json:"pair"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Pair == "" {
		http.Error(w, "pair required", http.StatusBadRequest)
		return
	}
	s.mkt.SetPair(body.Pair)
	s.ledger.TouchPair(body.Pair)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetTimeframe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Timeframe common.Timeframe `json:"timeframe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Timeframe == "" {
		http.Error(w, "timeframe required", http.StatusBadRequest)
		return
	}
	s.mkt.SetTimeframe(body.Timeframe)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.stop()
	}
	s.conns = make(map[*connection]struct{})
}

type connection struct {
	conn   *websocket.Conn
	logger *zap.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc

	writeChan chan Frame
}

func newConnection(conn *websocket.Conn, logger *zap.Logger) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		conn:      conn,
		logger:    logger,
		ctx:       ctx,
		ctxCancel: cancel,
		writeChan: make(chan Frame, 64),
	}
}

func (c *connection) start() {
	go c.read()
	go c.write()
}

func (c *connection) stop() {
	c.ctxCancel()
	_ = c.conn.Close()
}

func (c *connection) done() <-chan struct{} {
	return c.ctx.Done()
}

// send queues a frame, dropping it when the writer is backed up.
func (c *connection) send(f Frame) {
	select {
	case c.writeChan <- f:
	default: // drop if blocked
	}
}

// read drains inbound frames only to detect the peer closing.
func (c *connection) read() {
	defer c.stop()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("cannot read data", zap.Error(err))
			}
			return
		}
	}
}

func (c *connection) write() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case f := <-c.writeChan:
			data, err := json.Marshal(f)
			if err != nil {
				c.logger.Warn("failed to marshal frame", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Warn("failed to write to connection", zap.Error(err))
				c.stop()
				return
			}
		}
	}
}

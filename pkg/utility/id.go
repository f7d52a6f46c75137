package utility

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func newULID() ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// NewTradeID, NewPositionID and NewOrderID return lexicographically sortable
// ids, so front-inserted lists stay inspectable by creation order.
func NewTradeID() string    { return "trade_" + newULID().String() }
func NewPositionID() string { return "pos_" + newULID().String() }
func NewOrderID() string    { return "order_" + newULID().String() }

// NewTxHash synthesizes a transaction identifier for a simulated fill. The
// sim_ prefix marks it as never having touched a chain.
func NewTxHash() string {
	return "sim_" + strings.ToLower(newULID().String())
}

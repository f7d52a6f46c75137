package utility

import (
	"strings"
	"testing"
)

func Test_IdPrefixes(t *testing.T) {
	if id := NewTradeID(); !strings.HasPrefix(id, "trade_") {
		t.Errorf("Trade id prefix: %s", id)
	}
	if id := NewPositionID(); !strings.HasPrefix(id, "pos_") {
		t.Errorf("Position id prefix: %s", id)
	}
	if id := NewOrderID(); !strings.HasPrefix(id, "order_") {
		t.Errorf("Order id prefix: %s", id)
	}
	if h := NewTxHash(); !strings.HasPrefix(h, "sim_") || h != strings.ToLower(h) {
		t.Errorf("Tx hash format: %s", h)
	}
}

func Test_IdsAreUniqueAndSortable(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	prev := ""
	for i := 0; i < n; i++ {
		id := NewTradeID()
		if _, dup := seen[id]; dup {
			t.Fatalf("Duplicate id %s", id)
		}
		seen[id] = struct{}{}
		if id <= prev {
			t.Fatalf("Ids not monotonic: %s after %s", id, prev)
		}
		prev = id
	}
}

func Test_ExecutionIDStable(t *testing.T) {
	ResetExecutionID()
	first := GetExecutionID()
	second := GetExecutionID()
	if first != second {
		t.Errorf("Execution id changed between calls")
	}

	ResetExecutionID()
	if third := GetExecutionID(); third == first {
		t.Errorf("Reset did not produce a fresh execution id")
	}
}

package clock

import (
	"testing"
	"time"
)

func Test_ManualAdvanceFiresInOrder(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	var fired []int
	m.AfterFunc(3*time.Second, func() { fired = append(fired, 3) })
	m.AfterFunc(1*time.Second, func() { fired = append(fired, 1) })
	m.AfterFunc(2*time.Second, func() { fired = append(fired, 2) })

	m.Advance(5 * time.Second)

	if len(fired) != 3 || fired[0] != 1 || fired[1] != 2 || fired[2] != 3 {
		t.Errorf("Expected deadline order, got %v", fired)
	}
	if got := m.Now(); !got.Equal(time.Unix(5, 0)) {
		t.Errorf("Expected now=5s, got %v", got)
	}
}

func Test_ManualAdvanceSkipsFutureTimers(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	fired := 0
	m.AfterFunc(10*time.Second, func() { fired++ })

	m.Advance(9 * time.Second)
	if fired != 0 {
		t.Errorf("Timer fired early")
	}

	m.Advance(1 * time.Second)
	if fired != 1 {
		t.Errorf("Timer did not fire at deadline")
	}
}

func Test_ManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	fired := 0
	timer := m.AfterFunc(time.Second, func() { fired++ })

	if !timer.Stop() {
		t.Errorf("First Stop should report true")
	}
	if timer.Stop() {
		t.Errorf("Second Stop should report false")
	}

	m.Advance(2 * time.Second)
	if fired != 0 {
		t.Errorf("Stopped timer fired")
	}
}

func Test_ManualRescheduleWithinWindow(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	var fired []time.Time
	var tick func()
	tick = func() {
		fired = append(fired, m.Now())
		if len(fired) < 3 {
			m.AfterFunc(time.Second, tick)
		}
	}
	m.AfterFunc(time.Second, tick)

	// A callback scheduling a follow-up inside the same window fires too.
	m.Advance(10 * time.Second)

	if len(fired) != 3 {
		t.Fatalf("Expected 3 fires, got %d", len(fired))
	}
	for i, ts := range fired {
		want := time.Unix(int64(i+1), 0)
		if !ts.Equal(want) {
			t.Errorf("Fire %d at %v, want %v", i, ts, want)
		}
	}
}

func Test_SystemClockMonotonicEnough(t *testing.T) {
	c := System()
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Errorf("System clock went backwards")
	}
}

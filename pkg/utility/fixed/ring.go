package fixed

import "fmt"

// RingBuffer is a fixed-capacity window of Points with rolling statistics.
// Index 0 is the most recently added element.
type RingBuffer struct {
	buffer   []Point
	capacity int
	size     int
	tail     int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	return &RingBuffer{
		buffer:   make([]Point, capacity),
		capacity: capacity,
	}
}

func (r *RingBuffer) Size() int     { return r.size }
func (r *RingBuffer) Capacity() int { return r.capacity }
func (r *RingBuffer) IsFull() bool  { return r.size == r.capacity }

func (r *RingBuffer) Clear() {
	r.size = 0
	r.tail = 0
}

func (r *RingBuffer) Add(p Point) {
	r.buffer[r.tail] = p
	r.tail = (r.tail + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

func (r *RingBuffer) Get(idx int) Point {
	if idx < 0 || idx >= r.size {
		panic(fmt.Sprintf("index %d out of range [0, %d)", idx, r.size))
	}
	actual := (r.tail - 1 - idx + r.capacity) % r.capacity
	return r.buffer[actual]
}

func (r *RingBuffer) Latest() Point {
	return r.Get(0)
}

func (r *RingBuffer) Sum() Point {
	sum := Zero
	for i := 0; i < r.size; i++ {
		sum = sum.Add(r.Get(i))
	}
	return sum
}

func (r *RingBuffer) Mean() Point {
	if r.size == 0 {
		return Zero
	}
	return r.Sum().DivInt(r.size)
}

// StdDev is the population standard deviation of the window.
func (r *RingBuffer) StdDev() Point {
	if r.size <= 1 {
		return Zero
	}

	mean := r.Mean()
	sumSquared := Zero
	for i := 0; i < r.size; i++ {
		diff := r.Get(i).Sub(mean)
		sumSquared = sumSquared.Add(diff.Mul(diff))
	}
	return sumSquared.DivInt(r.size).Sqrt()
}

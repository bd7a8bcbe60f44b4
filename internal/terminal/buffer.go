package terminal

import "sync"

// Buffer is a fixed-size ring that keeps the most recent bytes written to it.
type Buffer struct {
	mu    sync.RWMutex
	data  []byte
	start int
	size  int
	total int64
}

// NewBuffer returns a ring holding at most capacity bytes.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Write implements io.Writer. It never fails; the oldest bytes are dropped
// once the ring is full.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	b.total += int64(n)
	capacity := len(b.data)
	if n >= capacity {
		copy(b.data, p[n-capacity:])
		b.start = 0
		b.size = capacity
		return n, nil
	}
	for _, c := range p {
		end := (b.start + b.size) % capacity
		b.data[end] = c
		if b.size < capacity {
			b.size++
		} else {
			b.start = (b.start + 1) % capacity
		}
	}
	return n, nil
}

// Bytes returns a copy of the retained bytes, oldest first. Unlike a reader
// it does not consume anything.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]byte, b.size)
	first := copy(out, b.data[b.start:min(b.start+b.size, len(b.data))])
	copy(out[first:], b.data[:b.size-first])
	return out
}

// Len returns the number of retained bytes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Total returns how many bytes were ever written.
func (b *Buffer) Total() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

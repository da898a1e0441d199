package dispatch

import "sync"

// DefaultStderrTail is the default tailBuffer capacity (4KB). Search tools
// can be noisy on stderr; only the tail matters for diagnostics.
const DefaultStderrTail = 4096

// tailBuffer is a fixed-capacity tail buffer that implements io.Writer.
// It retains the last N bytes written, discarding oldest bytes when full.
type tailBuffer struct {
	mu       sync.Mutex
	buf      []byte
	capacity int
	size     int
}

func newTailBuffer(capacity int) *tailBuffer {
	if capacity <= 0 {
		capacity = DefaultStderrTail
	}
	return &tailBuffer{
		buf:      make([]byte, capacity),
		capacity: capacity,
	}
}

// Write implements io.Writer. Always returns len(p), nil.
func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p)
	if n == 0 {
		return 0, nil
	}

	if n >= b.capacity {
		copy(b.buf, p[n-b.capacity:])
		b.size = b.capacity
		return n, nil
	}

	avail := b.capacity - b.size
	if n <= avail {
		copy(b.buf[b.size:], p)
		b.size += n
	} else {
		// Shift existing data left to make room for the new tail.
		discard := n - avail
		copy(b.buf, b.buf[discard:b.size])
		b.size -= discard
		copy(b.buf[b.size:], p)
		b.size += n
	}

	return n, nil
}

// String returns the current buffer contents.
func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf[:b.size])
}

package resource

import "sync"

// Buffer accumulates resources between drains. Every page-affecting operation
// drains the buffer and returns exactly the exchanges that completed since
// the previous drain, in arrival order.
type Buffer struct {
	mu        sync.Mutex
	resources []*Resource
}

// NewBuffer creates an empty resource buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append records a completed exchange.
func (b *Buffer) Append(r *Resource) {
	if r == nil {
		return
	}
	b.mu.Lock()
	b.resources = append(b.resources, r)
	b.mu.Unlock()
}

// Drain returns all buffered resources and resets the buffer.
func (b *Buffer) Drain() []*Resource {
	b.mu.Lock()
	drained := b.resources
	b.resources = nil
	b.mu.Unlock()
	return drained
}

// Len returns the number of buffered resources.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.resources)
}

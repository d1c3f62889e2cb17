// Package pool provides typed object pooling for metactx.
//
// Example usage:
//
//	buffers := pool.New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
//	buf := buffers.Get()
//	defer buffers.Put(buf)
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool with type safety. It wraps sync.Pool with
// statistics and an optional reset function, and is safe for concurrent
// use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. newFn builds an object when the pool is empty; reset,
// if not nil, cleans an object before it goes back.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object, creating one when the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats reports how many objects were allocated, how many are checked out
// and how many Gets were served without allocating.
func (p *Pool[T]) Stats() (allocated, inUse, hits int64) {
	allocated = atomic.LoadInt64(&p.stats.allocated)
	hits = atomic.LoadInt64(&p.stats.gets) - allocated
	if hits < 0 {
		hits = 0
	}
	return allocated, atomic.LoadInt64(&p.stats.inUse), hits
}

// MaxPooledBuffer is the largest buffer capacity Buffers keeps.
const MaxPooledBuffer = 1 << 20

// BufferPool pools bytes.Buffers, dropping any that grew past
// MaxPooledBuffer.
type BufferPool struct {
	p *Pool[*bytes.Buffer]
}

// NewBufferPool creates a buffer pool whose new buffers start with
// initialSize bytes of capacity.
func NewBufferPool(initialSize int) *BufferPool {
	return &BufferPool{p: New(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, initialSize)) },
		func(b *bytes.Buffer) { b.Reset() },
	)}
}

// Get returns an empty buffer.
func (b *BufferPool) Get() *bytes.Buffer {
	return b.p.Get()
}

// Put returns buf to the pool.
func (b *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if buf.Cap() > MaxPooledBuffer {
		atomic.AddInt64(&b.p.stats.inUse, -1)
		return
	}
	b.p.Put(buf)
}

// Stats reports the statistics of the underlying pool.
func (b *BufferPool) Stats() (allocated, inUse, hits int64) {
	return b.p.Stats()
}

// Buffers is the shared buffer pool.
var Buffers = NewBufferPool(4096)

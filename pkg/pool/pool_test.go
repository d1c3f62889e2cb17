package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsObjects(t *testing.T) {
	p := New(
		func() *[]string { s := make([]string, 0, 4); return &s },
		func(s *[]string) { *s = (*s)[:0] },
	)

	s := p.Get()
	*s = append(*s, "a", "b")
	p.Put(s)

	again := p.Get()
	assert.Empty(t, *again)
	p.Put(again)

	allocated, inUse, _ := p.Stats()
	assert.GreaterOrEqual(t, allocated, int64(1))
	assert.Zero(t, inUse)
}

func TestPoolConcurrentUse(t *testing.T) {
	p := New(func() *bytes.Buffer { return new(bytes.Buffer) }, func(b *bytes.Buffer) { b.Reset() })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := p.Get()
				b.WriteString("x")
				p.Put(b)
			}
		}()
	}
	wg.Wait()

	_, inUse, _ := p.Stats()
	assert.Zero(t, inUse)
}

func TestBufferPoolDropsLargeBuffers(t *testing.T) {
	bp := NewBufferPool(16)

	buf := bp.Get()
	buf.WriteString("hello")
	bp.Put(buf)
	assert.Zero(t, bp.Get().Len())

	big := bp.Get()
	big.Grow(MaxPooledBuffer + 1)
	bp.Put(big)
	bp.Put(nil)

	_, inUse, _ := bp.Stats()
	assert.Equal(t, int64(1), inUse)
}

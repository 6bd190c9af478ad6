package image

import (
	"sync"
	"sync/atomic"
)

// Pool recycles pyramid level buffers between image loads.
//
// Buffers are grouped by dimensions and format. Loading a sequence of
// same-sized pictures (the batch case) then reuses every level allocation
// of the previous pyramid.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*ImageBuf
	maxSize int // max buffers per bucket

	hits   atomic.Int64
	misses atomic.Int64
}

type poolKey struct {
	width  int
	height int
	format Format
}

// NewPool creates a new buffer pool retaining at most maxPerBucket buffers
// of each size/format. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*ImageBuf),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a buffer from the pool or allocates a new one.
// Pixel contents of a reused buffer are undefined: callers must overwrite
// every pixel. Returns nil for invalid dimensions or format.
func (p *Pool) Get(width, height int, format Format) *ImageBuf {
	key := poolKey{width: width, height: height, format: format}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		p.hits.Add(1)
		return buf
	}
	p.mu.Unlock()

	p.misses.Add(1)
	buf, err := NewImageBuf(width, height, format)
	if err != nil {
		return nil
	}
	return buf
}

// Put returns a buffer to the pool. Nil buffers and buffers beyond the
// bucket capacity are dropped.
func (p *Pool) Put(buf *ImageBuf) {
	if buf == nil {
		return
	}

	key := poolKey{width: buf.width, height: buf.height, format: buf.format}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Stats returns how many Get calls were served from the pool and how many
// needed a fresh allocation.
func (p *Pool) Stats() (hits, misses int64) {
	return p.hits.Load(), p.misses.Load()
}

// defaultPool backs pyramids built without an explicit pool.
var defaultPool = NewPool(4)

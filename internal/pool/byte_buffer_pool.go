// Package pool provides sync.Pool-backed scratch buffers: a ByteBuffer
// pool (GetPostingBuffer/PutPostingBuffer) and the uint32 slice pool that
// backs the cursor's decoded term_positions array. Pooling them avoids
// garbage-collector pressure for buffers allocated and discarded at high
// frequency. No package of this module currently draws from the ByteBuffer
// pool; the cursor is the only caller of GetUint32Slice.
package pool

import "sync"

// PostingBufferDefaultSize is the default capacity of a ByteBuffer handed
// out by the default pool — sized for one term's hierarchical group blob.
const (
	PostingBufferDefaultSize  = 4 * 1024
	PostingBufferMaxThreshold = 256 * 1024
)

// ByteBuffer is a growable byte buffer intended for reuse via
// ByteBufferPool instead of being garbage collected after every use.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while retaining its allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Write appends data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool pools ByteBuffers, discarding any that grow past
// maxThreshold to avoid pinning oversized allocations in the pool.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the
// specified default size.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}
	bb.Reset()
	bbp.pool.Put(bb)
}

var defaultPostingPool = NewByteBufferPool(PostingBufferDefaultSize, PostingBufferMaxThreshold)

// GetPostingBuffer retrieves a ByteBuffer from the default posting pool.
func GetPostingBuffer() *ByteBuffer {
	return defaultPostingPool.Get()
}

// PutPostingBuffer returns a ByteBuffer to the default posting pool.
func PutPostingBuffer(bb *ByteBuffer) {
	defaultPostingPool.Put(bb)
}

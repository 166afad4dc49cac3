package logging

import (
	"bytes"
	"sync"
)

const (
	// DefaultBufferSize 一行日志的初始容量
	DefaultBufferSize = 256
	// DefaultMaxBufferSize 超过该容量的 buffer 不再放回池中
	DefaultMaxBufferSize = 64 << 10
)

// BufferPool 格式化日志行用的缓冲池。
// 超大的 buffer（例如一次输出了很长的字段）用完后直接丢弃，避免长期占用内存。
type BufferPool struct {
	pool    sync.Pool
	maxSize int
}

// NewBufferPool 创建缓冲池，size 为初始容量，maxSize 为可回收的最大容量
func NewBufferPool(size, maxSize int) *BufferPool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if maxSize < size {
		maxSize = size
	}
	return &BufferPool{
		maxSize: maxSize,
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, size))
			},
		},
	}
}

func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put 归还 buffer，容量超过 maxSize 时丢弃
func (p *BufferPool) Put(b *bytes.Buffer) {
	if b.Cap() > p.maxSize {
		return
	}
	b.Reset()
	p.pool.Put(b)
}

// Line 复制 buffer 的内容并保证以换行结尾，之后 buffer 可以安全归还
func (p *BufferPool) Line(b *bytes.Buffer) []byte {
	n := b.Len()
	if n == 0 || b.Bytes()[n-1] != '\n' {
		n++
	}
	out := make([]byte, n)
	copy(out, b.Bytes())
	out[n-1] = '\n'
	return out
}

// GlobalBufferPool 格式化器共用的缓冲池
var GlobalBufferPool = NewBufferPool(DefaultBufferSize, DefaultMaxBufferSize)

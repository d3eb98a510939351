// pool.go - Only for internal buffer reuse
package iso8583

import (
	"bytes"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 512)
		return &buf
	},
}

// Only pool buffers, not messages
func getBuffer() []byte {
	buf := bufferPool.Get().(*[]byte)
	return (*buf)[:0]
}

// sizedBuffer returns a pooled buffer of length n.
func sizedBuffer(n int) []byte {
	buf := getBuffer()
	if cap(buf) < n {
		putBuffer(buf)
		return make([]byte, n)
	}
	return buf[:n]
}

func putBuffer(buf []byte) {
	if cap(buf) <= 8192 { // Don't pool huge buffers
		b := buf[:0]
		bufferPool.Put(&b)
	}
}

var packBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

func getPackBuffer() *bytes.Buffer {
	return packBufferPool.Get().(*bytes.Buffer)
}

func putPackBuffer(b *bytes.Buffer) {
	if b.Cap() <= 64*1024 {
		b.Reset()
		packBufferPool.Put(b)
	}
}

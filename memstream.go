package triplestore

import "sync"

// MemStream is an in-memory Stream, useful for tests and for workloads
// that want a Heap without a backing file. It grows to accommodate
// writes past its current length, mirroring the zero-extension behaviour
// of a sparse file.
type MemStream struct {
	mu   sync.Mutex
	data []byte
}

// NewMemStream returns an empty MemStream pre-sized to size bytes.
func NewMemStream(size int64) *MemStream {
	return &MemStream{data: make([]byte, size)}
}

func (m *MemStream) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off >= int64(len(m.data)) {
		return 0, nil
	}
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *MemStream) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	n := copy(m.data[off:end], p)
	return n, nil
}

// Len returns the current backing length.
func (m *MemStream) Len() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data))
}

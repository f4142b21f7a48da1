package storage

// MemStore is an in-memory store for tests. It records every write.
type MemStore struct {
	// Value is the current stored byte.
	Value byte

	// Writes contains every byte passed to SaveIndex, in order.
	Writes []byte

	// LoadError, if set, will be returned by LoadIndex.
	LoadError error

	// SaveError, if set, will be returned by SaveIndex.
	SaveError error
}

// NewMemStore creates a MemStore holding the given byte.
func NewMemStore(value byte) *MemStore {
	return &MemStore{Value: value}
}

// LoadIndex returns Value.
func (m *MemStore) LoadIndex() (byte, error) {
	if m.LoadError != nil {
		return 0, m.LoadError
	}
	return m.Value, nil
}

// SaveIndex records the write.
func (m *MemStore) SaveIndex(index byte) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Value = index
	m.Writes = append(m.Writes, index)
	return nil
}

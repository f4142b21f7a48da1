// Package storage keeps the selected controller index across power cycles.
//
// FileStore emulates a small EEPROM: an image file of fixed size with the
// index held in a single byte at a fixed address. There is no header,
// checksum or version.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Defaults match an ATmega328 style 1 KiB EEPROM with the index at address 0.
const (
	DefaultSize    = 1024
	DefaultAddress = 0
)

// FileStore reads and writes one byte of an EEPROM image file.
type FileStore struct {
	path    string
	address int64
	size    int64
}

// NewFileStore returns a store for the byte at address in the image at path.
// The image is created on first write.
func NewFileStore(path string, address, size int) (*FileStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("eeprom size %d must be positive", size)
	}
	if address < 0 || address >= size {
		return nil, fmt.Errorf("eeprom address %d outside 0-%d", address, size-1)
	}
	return &FileStore{path: path, address: int64(address), size: int64(size)}, nil
}

// LoadIndex returns the stored byte. A missing or short image reads as 0,
// like an erased cell that was never written.
func (s *FileStore) LoadIndex() (byte, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open eeprom image: %w", err)
	}
	defer f.Close()

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, s.address); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read eeprom address %d: %w", s.address, err)
	}
	return buf[0], nil
}

// SaveIndex writes the byte and syncs it to disk before returning.
func (s *FileStore) SaveIndex(index byte) error {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("open eeprom image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat eeprom image: %w", err)
	}
	if info.Size() < s.size {
		if err := f.Truncate(s.size); err != nil {
			f.Close()
			return fmt.Errorf("size eeprom image: %w", err)
		}
	}

	if _, err := f.WriteAt([]byte{index}, s.address); err != nil {
		f.Close()
		return fmt.Errorf("write eeprom address %d: %w", s.address, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync eeprom image: %w", err)
	}
	return f.Close()
}

// Path returns the image file path.
func (s *FileStore) Path() string {
	return s.path
}

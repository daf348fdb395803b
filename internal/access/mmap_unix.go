//go:build !windows

package access

import (
	"os"
	"syscall"

	"github.com/ieegtools/ieegio/internal/types"
)

// mmapSource provides zero-copy file access via memory mapping.
type mmapSource struct {
	data []byte
	file *os.File
	path string
	c    counters
}

// OpenMmap maps the file at path read-only into the address space.
//
// Fetch returns subslices of the mapping without copying; they stay valid
// until Close. Callers fall back to the buffered source when mapping fails.
func OpenMmap(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "open", Err: err}
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &types.IOError{Path: path, Op: "stat", Err: err}
	}

	size := fi.Size()
	if size == 0 {
		return &mmapSource{data: nil, file: f, path: path}, nil
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, &types.IOError{Path: path, Op: "mmap", Err: err}
	}

	return &mmapSource{data: data, file: f, path: path}, nil
}

// Fetch returns a direct slice into the mapped data (zero-copy).
func (m *mmapSource) Fetch(off, length int64) ([]byte, error) {
	if err := checkSpan(off, length, int64(len(m.data))); err != nil {
		return nil, &types.IOError{Path: m.path, Op: "fetch", Err: err}
	}
	m.c.fetches.Add(1)
	m.c.bytes.Add(uint64(length))
	return m.data[off : off+length], nil
}

// Size returns the size of the mapped file.
func (m *mmapSource) Size() int64 {
	return int64(len(m.data))
}

// Stat returns operation counters.
func (m *mmapSource) Stat() map[string]uint64 {
	return m.c.stat()
}

// Close unmaps the file and closes the underlying file handle.
func (m *mmapSource) Close() error {
	if m.data != nil {
		if err := syscall.Munmap(m.data); err != nil {
			m.file.Close()
			return &types.IOError{Path: m.path, Op: "munmap", Err: err}
		}
		m.data = nil
	}
	if m.file != nil {
		err := m.file.Close()
		m.file = nil
		if err != nil {
			return &types.IOError{Path: m.path, Op: "close", Err: err}
		}
	}
	return nil
}

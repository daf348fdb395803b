package access

import (
	"io"
	"os"

	"github.com/ieegtools/ieegio/internal/types"
)

// DefaultChunkSize is the buffer size for chunked reads when no explicit
// chunk size is configured. Readers round it up to the record stride for
// record-chunked formats so a chunk never splits a record.
const DefaultChunkSize = 1 << 20

// bufferedSource reads byte ranges through an explicit chunk-sized buffer.
type bufferedSource struct {
	file  *os.File
	path  string
	size  int64
	chunk int64
	c     counters
}

// OpenBuffered opens the file at path for chunked reads. A chunkSize of
// zero or less selects DefaultChunkSize.
func OpenBuffered(path string, chunkSize int64) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "open", Err: err}
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &types.IOError{Path: path, Op: "stat", Err: err}
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &bufferedSource{
		file:  f,
		path:  path,
		size:  fi.Size(),
		chunk: chunkSize,
	}, nil
}

// Fetch reads length bytes at off into a freshly allocated slice, one
// chunk at a time. Each chunk counts as one read operation.
func (b *bufferedSource) Fetch(off, length int64) ([]byte, error) {
	if err := checkSpan(off, length, b.size); err != nil {
		return nil, &types.IOError{Path: b.path, Op: "fetch", Err: err}
	}
	b.c.fetches.Add(1)

	buf := make([]byte, length)
	for done := int64(0); done < length; {
		n := b.chunk
		if length-done < n {
			n = length - done
		}

		read, err := b.file.ReadAt(buf[done:done+n], off+done)
		b.c.reads.Add(1)
		b.c.bytes.Add(uint64(read))
		if err != nil && err != io.EOF {
			return nil, &types.IOError{Path: b.path, Op: "read", Err: err}
		}
		if int64(read) < n {
			return nil, &types.IOError{Path: b.path, Op: "read", Err: io.ErrUnexpectedEOF}
		}
		done += n
	}

	return buf, nil
}

// Size returns the size of the underlying file.
func (b *bufferedSource) Size() int64 {
	return b.size
}

// Stat returns operation counters.
func (b *bufferedSource) Stat() map[string]uint64 {
	return b.c.stat()
}

// Close closes the underlying file handle.
func (b *bufferedSource) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	if err != nil {
		return &types.IOError{Path: b.path, Op: "close", Err: err}
	}
	return nil
}

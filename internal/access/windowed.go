package access

import (
	"fmt"
	"sort"

	"github.com/ieegtools/ieegio/internal/types"
)

// Windowed serves fetches from a fixed set of merged spans, each fetched
// from the underlying source at most once.
//
// Epoch extraction wraps the buffered source in a window built from the
// merged byte spans of all requested ranges, so overlapping or adjacent
// trials never re-read shared bytes. The underlying source stays owned by
// the caller; Close only drops the window's buffers.
type Windowed struct {
	src   Source
	spans []Span
	blobs [][]byte
}

// NewWindowed creates a prefetch window over src. Spans must already be
// merged (sorted, non-overlapping); use MergeSpans.
func NewWindowed(src Source, spans []Span) *Windowed {
	return &Windowed{
		src:   src,
		spans: spans,
		blobs: make([][]byte, len(spans)),
	}
}

// Fetch returns length bytes at off. The request must fall entirely inside
// one of the window's spans.
func (w *Windowed) Fetch(off, length int64) ([]byte, error) {
	i := sort.Search(len(w.spans), func(i int) bool { return w.spans[i].End() > off })
	if i == len(w.spans) || off < w.spans[i].Off || off+length > w.spans[i].End() {
		return nil, &types.IOError{
			Op:  "fetch",
			Err: fmt.Errorf("request [%d, %d) outside prefetch window", off, off+length),
		}
	}

	if w.blobs[i] == nil {
		blob, err := w.src.Fetch(w.spans[i].Off, w.spans[i].Len)
		if err != nil {
			return nil, err
		}
		w.blobs[i] = blob
	}

	rel := off - w.spans[i].Off
	return w.blobs[i][rel : rel+length], nil
}

// Size returns the size of the underlying file.
func (w *Windowed) Size() int64 {
	return w.src.Size()
}

// Stat returns the underlying source's operation counters, which reflect
// the actual file I/O performed through the window.
func (w *Windowed) Stat() map[string]uint64 {
	return w.src.Stat()
}

// Close drops the window's buffers. The underlying source is not closed.
func (w *Windowed) Close() error {
	w.blobs = nil
	return nil
}

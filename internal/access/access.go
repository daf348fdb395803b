// Package access provides the byte-range fetch strategies backing the
// readers: a zero-copy memory-mapped source and a buffered chunked source,
// plus span merging and a prefetch window for multi-range extraction.
package access

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Strategy selects how raw bytes are fetched from the data file.
type Strategy int

const (
	// StrategyAuto picks memory-mapped access for single-range reads and
	// switches to buffered chunked access for epoch extraction whose total
	// byte volume exceeds the configured threshold.
	StrategyAuto Strategy = iota
	// StrategyMmap forces the memory-mapped source.
	StrategyMmap
	// StrategyBuffered forces the buffered chunked source.
	StrategyBuffered
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyMmap:
		return "mmap"
	case StrategyBuffered:
		return "buffered"
	default:
		return "auto"
	}
}

// Source is a read-only byte-range fetcher over one data file.
//
// Bytes returned by a memory-mapped Fetch alias the mapping and stay valid
// until Close; the buffered source returns freshly allocated bytes. Sources
// are safe for concurrent Fetch calls.
type Source interface {
	// Fetch returns length bytes starting at off. The returned slice must
	// not be modified.
	Fetch(off, length int64) ([]byte, error)

	// Size returns the size of the underlying file.
	Size() int64

	// Stat returns operation counters since the source was opened. The KEY
	// is the internal operation, the VALUE is the count. Relevant for
	// testing and diagnostics.
	Stat() map[string]uint64

	// Close releases the file handle (and mapping, if any).
	Close() error
}

// counters tracks source operations. Updated atomically so concurrent
// read-only fetches do not race.
type counters struct {
	fetches atomic.Uint64
	reads   atomic.Uint64
	bytes   atomic.Uint64
}

func (c *counters) stat() map[string]uint64 {
	return map[string]uint64{
		"fetches": c.fetches.Load(),
		"reads":   c.reads.Load(),
		"bytes":   c.bytes.Load(),
	}
}

// checkSpan validates a fetch request against the file size.
func checkSpan(off, length, size int64) error {
	if off < 0 || length < 0 || off+length > size {
		return fmt.Errorf("fetch of %d bytes at offset %d exceeds file size %d", length, off, size)
	}
	return nil
}

// Span is a byte range within the data file.
type Span struct {
	Off int64
	Len int64
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int64 {
	return s.Off + s.Len
}

// MergeSpans sorts spans by offset and coalesces overlapping or adjacent
// ones, so shared bytes are fetched once during multi-range extraction.
// The input is not modified.
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Off < sorted[j].Off })

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Off <= last.End() {
			if s.End() > last.End() {
				last.Len = s.End() - last.Off
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

package ieegio

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ieegtools/ieegio/internal/access"
	"github.com/ieegtools/ieegio/internal/cache"
	"github.com/ieegtools/ieegio/internal/registry"
	"github.com/ieegtools/ieegio/internal/types"

	// Format packages register their header parsers on import.
	_ "github.com/ieegtools/ieegio/internal/brainvision"
	_ "github.com/ieegtools/ieegio/internal/edf"
	_ "github.com/ieegtools/ieegio/internal/mef3"
)

// SampleSource decodes MEF3 compressed sample data.
//
// The core delegates MEF3 block decompression to an external native
// decoder. Decode returns physical-unit samples for one channel over an
// inclusive global sample range; the returned slice must hold exactly
// rng.Count() values. Implementations are injected with WithMEF3Decoder.
type SampleSource interface {
	Decode(channel int, rng SampleRange) ([]float64, error)
}

// Reader provides access to one opened recording.
//
// A Reader exclusively owns its parsed header, its access-strategy
// handles, and its result cache. It is not safe for concurrent mutation;
// concurrent read-only retrievals (ReadRange, ReadEpochs, ReadTrials) are
// permitted because the underlying sources are treated as read-only and
// the cache synchronizes internally.
//
// Always call Close() when done to release the file handle and mapping:
//
//	reader, err := ieegio.Open("rec.edf")
//	if err != nil {
//		return err
//	}
//	defer reader.Close()
type Reader struct {
	// Path to the opened header file or session directory.
	Path string

	// Detected format (EDF, BrainVision, MEF3).
	Format Format

	header *types.Header
	opts   *openOptions

	// identity captures (data path, size, mtime) at open time and is part
	// of every cache key, so entries never outlive the file state they
	// were computed from.
	identity string

	// threshold is the byte volume above which auto-strategy multi-range
	// extraction switches to buffered chunked reads.
	threshold int64

	// chunk is the buffered read size, aligned to the record stride.
	chunk int64

	cache *cache.Cache

	mu      sync.Mutex
	mmapSrc access.Source
	bufSrc  access.Source
	mmapErr error
	closed  bool
}

// Open opens a recording and parses its header.
//
// The format is detected from the path extension and confirmed by a
// magic-byte probe. Opening reads only metadata; sample data is fetched
// lazily by the read methods.
//
// Options customize access behavior:
//
//	reader, err := ieegio.Open("rec.vhdr",
//	    ieegio.WithPreload(),
//	    ieegio.WithAccessStrategy(ieegio.StrategyBuffered),
//	)
func Open(path string, opts ...Option) (*Reader, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	parser := registry.Get(format)
	if parser == nil {
		return nil, &UnsupportedVariantError{
			Path:   path,
			Field:  "format",
			Reason: fmt.Sprintf("no parser available for format %s", format),
		}
	}

	hdr, err := parser.ParseHeader(path)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(hdr.DataPath)
	if err != nil {
		return nil, &IOError{Path: hdr.DataPath, Op: "stat", Err: err}
	}

	chunk := options.chunkSize
	if chunk <= 0 {
		chunk = access.DefaultChunkSize
	}
	// Align the chunk to the record stride so one buffered read never
	// splits a record.
	if hdr.RecordStride > 0 && chunk%hdr.RecordStride != 0 {
		chunk += hdr.RecordStride - chunk%hdr.RecordStride
	}

	// The mmap/buffered crossover for multi-range extraction, probed once
	// here. Platforms without a probe get a fixed 1 GiB threshold.
	threshold := int64(1 << 30)
	if free := access.AvailableMemory(); free > 0 {
		threshold = int64(options.memFraction * float64(free))
	}

	return &Reader{
		Path:      path,
		Format:    format,
		header:    hdr,
		opts:      options,
		identity:  fmt.Sprintf("%s|%d|%d", hdr.DataPath, fi.Size(), fi.ModTime().UnixNano()),
		threshold: threshold,
		chunk:     chunk,
		cache:     cache.New(),
	}, nil
}

// OpenContext opens a recording with context support for cancellation.
//
// This is a thin wrapper around Open() that checks the context before
// starting; header parsing itself is short.
func OpenContext(ctx context.Context, path string, opts ...Option) (*Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple recordings concurrently.
//
// Recordings are parsed in parallel using up to runtime.NumCPU()
// goroutines. Results are returned in the same order as the input paths.
// If any recording fails to open, all successfully opened readers are
// closed and an error is returned.
func OpenMany(ctx context.Context, paths ...string) ([]*Reader, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Reader, len(paths))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			reader, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = reader
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, reader := range results {
			if reader != nil {
				reader.Close()
			}
		}
		return nil, err
	}

	return results, nil
}

// Header returns a copy of the parsed canonical header.
func (r *Reader) Header() Header {
	return r.header.Clone()
}

// Invalidate clears all cached results. Subsequent reads go back to the
// file.
func (r *Reader) Invalidate() {
	r.cache.Invalidate()
}

// IOStats returns aggregated operation counters of the reader's access
// sources (fetches, reads, bytes). Relevant for testing and diagnostics.
func (r *Reader) IOStats() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]uint64)
	for _, src := range []access.Source{r.mmapSrc, r.bufSrc} {
		if src == nil {
			continue
		}
		for k, v := range src.Stat() {
			out[k] += v
		}
	}
	return out
}

// Close releases the file handle and mapping and drops all cached
// results. Close is idempotent; after Close the Reader rejects reads.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	for _, src := range []access.Source{r.mmapSrc, r.bufSrc} {
		if src == nil {
			continue
		}
		if err := src.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.mmapSrc = nil
	r.bufSrc = nil
	r.cache.Invalidate()

	return firstErr
}

// checkOpen rejects operations on a closed reader.
func (r *Reader) checkOpen() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return &IOError{Path: r.Path, Op: "read", Err: os.ErrClosed}
	}
	return nil
}

// source returns the access source for a request of the given total byte
// volume, opening it on first use. Sources are memoized and owned by the
// Reader until Close.
//
// Auto strategy: single-range reads map the file; multi-range extraction
// switches to buffered chunked reads once the request exceeds the memory
// threshold. When mapping fails and no strategy is pinned, buffered reads
// take over.
func (r *Reader) source(totalBytes int64, multiRange bool) (access.Source, Strategy, error) {
	strategy := r.opts.strategy
	if strategy == StrategyAuto {
		if multiRange && totalBytes > r.threshold {
			strategy = StrategyBuffered
		} else {
			strategy = StrategyMmap
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, strategy, &IOError{Path: r.Path, Op: "read", Err: os.ErrClosed}
	}

	if strategy == StrategyMmap {
		if r.mmapSrc != nil {
			return r.mmapSrc, StrategyMmap, nil
		}
		if r.mmapErr == nil {
			src, err := access.OpenMmap(r.header.DataPath)
			if err == nil {
				r.mmapSrc = src
				return src, StrategyMmap, nil
			}
			r.mmapErr = err
		}
		// A pinned mmap strategy does not fall back.
		if r.opts.strategy == StrategyMmap {
			return nil, strategy, r.mmapErr
		}
		strategy = StrategyBuffered
	}

	if r.bufSrc == nil {
		src, err := access.OpenBuffered(r.header.DataPath, r.chunk)
		if err != nil {
			return nil, strategy, err
		}
		r.bufSrc = src
	}
	return r.bufSrc, StrategyBuffered, nil
}

// channelKey renders a channel selection for cache keys.
func channelKey(channels []int) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = strconv.Itoa(ch)
	}
	return strings.Join(parts, ",")
}

// rangeKey builds the cache key for a single-range read.
func (r *Reader) rangeKey(channels []int, rng SampleRange) string {
	return fmt.Sprintf("range|%s|%s|%d-%d|p=%t",
		r.identity, channelKey(channels), rng.Start, rng.End, r.opts.preload)
}

// epochsKey builds the cache key for a multi-range read.
func (r *Reader) epochsKey(channels []int, ranges []SampleRange) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "epochs|%s|%s|p=%t|", r.identity, channelKey(channels), r.opts.preload)
	for i, rng := range ranges {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%d-%d", rng.Start, rng.End)
	}
	return sb.String()
}

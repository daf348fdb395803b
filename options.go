package ieegio

// Option configures behavior when opening recordings.
//
// Options use the functional options pattern:
//
//	reader, err := ieegio.Open("rec.edf",
//	    ieegio.WithPreload(),
//	    ieegio.WithAccessStrategy(ieegio.StrategyBuffered),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening recordings.
type openOptions struct {
	strategy    Strategy     // access strategy, StrategyAuto by default
	preload     bool         // materialize the full recording on first read
	chunkSize   int64        // buffered read chunk size in bytes (0 = default)
	memFraction float64      // fraction of free memory before epochs go buffered
	mef3Decoder SampleSource // external MEF3 sample decoder
}

// defaultMemFraction is the share of probed free physical memory a
// multi-range request may occupy before the auto strategy switches to
// buffered chunked reads. The crossover is empirical; tune per workload
// with WithBufferedThreshold.
const defaultMemFraction = 0.25

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		strategy:    StrategyAuto,
		memFraction: defaultMemFraction,
	}
}

// WithPreload eagerly materializes the full recording in memory on the
// first read.
//
// After preloading, arbitrary sub-range and sub-channel requests are
// served by slicing the cached matrix instead of re-reading the file.
// This trades memory for I/O and suits workloads that revisit many small
// windows of the same recording.
func WithPreload() Option {
	return func(o *openOptions) {
		o.preload = true
	}
}

// WithAccessStrategy pins the byte-fetch strategy instead of letting the
// reader choose per request.
//
// Use StrategyBuffered for large multi-range extraction when mapping
// overhead or page-cache pressure is a concern, StrategyMmap to force
// zero-copy mapped access, or StrategyAuto (the default) to let the
// request shape decide. Pinning a strategy also makes I/O behavior
// deterministic for tests.
func WithAccessStrategy(s Strategy) Option {
	return func(o *openOptions) {
		o.strategy = s
	}
}

// WithChunkSize sets the buffer size in bytes for buffered chunked reads.
//
// The default is 1 MiB, rounded up to the record stride for record-chunked
// formats so one chunk never splits a record.
func WithChunkSize(bytes int64) Option {
	return func(o *openOptions) {
		o.chunkSize = bytes
	}
}

// WithBufferedThreshold sets the fraction of free physical memory a
// multi-range request may cover before the auto strategy switches from
// memory-mapped to buffered chunked access.
//
// The default is 0.25. On platforms without a memory probe a fixed 1 GiB
// threshold applies regardless of this setting.
func WithBufferedThreshold(fraction float64) Option {
	return func(o *openOptions) {
		if fraction > 0 {
			o.memFraction = fraction
		}
	}
}

// WithMEF3Decoder injects the native decoder collaborator that turns
// MEF3 compressed blocks into physical-unit samples.
//
// MEF3 sessions parse without a decoder, but reads fail until one is
// configured.
func WithMEF3Decoder(d SampleSource) Option {
	return func(o *openOptions) {
		o.mef3Decoder = d
	}
}

// Package ieegio provides unified access to intracranial EEG time-series
// recordings stored in heterogeneous binary formats.
//
// ieegio reads EDF, BrainVision, and MEF3 recordings through one API that
// abstracts over the per-format physical layout: sample-interleaved versus
// channel-contiguous data, record chunking, byte order, and per-channel
// calibration. Returned values are always physical units as float64.
//
// # Quick Start
//
// Reading a slice of samples from a recording:
//
//	reader, err := ieegio.Open("sub-01_task-rest_ieeg.vhdr")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer reader.Close()
//
//	hdr := reader.Header()
//	fmt.Printf("%d channels at %g Hz\n", len(hdr.Channels), hdr.SampleRate)
//
//	res, err := reader.ReadRange([]int{0, 1}, ieegio.SampleRange{Start: 0, End: 999})
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = res.Data // [channel][sample] physical values
//
// # Supported Formats
//
//   - EDF (.edf): record-chunked, sample-interleaved 16-bit integers with
//     per-channel linear calibration
//   - BrainVision (.vhdr + companion data file): multiplexed or vectorized
//     int16/int32/float32 data with per-channel resolution scaling
//   - MEF3 (.mefd session directory): compressed vectorized data, decoded
//     through an injected native decoder (see WithMEF3Decoder)
//
// # Epoch Extraction
//
// ReadEpochs extracts a set of equal-length, possibly non-contiguous
// sample ranges ("trials") as one tensor, scheduling the underlying I/O to
// avoid re-reading bytes shared between overlapping or adjacent trials:
//
//	epochs, err := reader.ReadEpochs([]int{0, 1}, []ieegio.SampleRange{
//		{Start: 0, End: 999},
//		{Start: 5000, End: 5999},
//	})
//
// ReadTrials epochs around event onsets given in seconds, with optional
// NaN padding at the recording edges and per-trial baseline normalization.
//
// # Access Strategies
//
// Raw bytes are fetched either through a read-only memory mapping or
// through buffered chunked reads. By default single-range reads use the
// mapping and large multi-range extractions fall back to buffered chunked
// I/O; WithAccessStrategy pins one strategy for deterministic behavior.
//
// # Caching
//
// Every Reader memoizes its results: repeated identical requests return
// copies of the cached values without touching the file, and concurrent
// requests for the same data compute it only once. WithPreload trades
// memory for I/O by materializing the full recording on first read and
// serving later sub-requests by slicing.
//
// # Errors
//
// Failures carry typed errors with enough context to diagnose the file:
// FormatError, UnsupportedVariantError, MissingCompanionFileError,
// RangeOutOfBoundsError, UnknownChannelError, InconsistentEpochLengthError,
// CorruptDataError, CancelledError, and IOError. Errors never corrupt
// reader or cache state; a failed request leaves the Reader usable.
package ieegio

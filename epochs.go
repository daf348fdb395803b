package ieegio

import (
	"context"
	"sort"

	"github.com/ieegtools/ieegio/internal/access"
	"github.com/ieegtools/ieegio/internal/types"
)

// ReadEpochs extracts multiple equal-length sample ranges in one pass.
//
// The result is a trials × channels × samples tensor whose trial order
// matches the input ranges. Ranges may overlap, touch, or arrive in any
// order; extraction sorts them by file position and merges their byte
// spans so shared bytes are read once. Like ReadRange, identical repeated
// requests are served from the cache.
//
// All ranges must span the same number of samples; a mismatch fails with
// InconsistentEpochLengthError.
func (r *Reader) ReadEpochs(channels []int, ranges []SampleRange) (*EpochResult, error) {
	return r.ReadEpochsContext(context.Background(), channels, ranges)
}

// ReadEpochsContext is ReadEpochs with cancellation between trials.
//
// Cancellation is checked before each trial's decode; once observed, the
// extraction returns a CancelledError wrapping the context error and no
// partial result.
func (r *Reader) ReadEpochsContext(ctx context.Context, channels []int, ranges []SampleRange) (*EpochResult, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := types.ValidateSelection(channels, len(r.header.Channels)); err != nil {
		return nil, err
	}
	for i, rng := range ranges {
		if err := rng.Validate(r.header.SampleCount); err != nil {
			return nil, err
		}
		if want := ranges[0].Count(); rng.Count() != want {
			return nil, &InconsistentEpochLengthError{Index: i, Got: rng.Count(), Want: want}
		}
	}

	if len(ranges) == 0 {
		return &EpochResult{Channels: append([]int(nil), channels...)}, nil
	}

	if r.opts.preload {
		full, err := r.preloaded()
		if err != nil {
			return nil, err
		}
		return sliceEpochs(full, channels, ranges), nil
	}

	v, err := r.cache.GetOrCompute(r.epochsKey(channels, ranges), func() (any, error) {
		return r.readEpochsDirect(ctx, channels, ranges)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.EpochResult).Clone(), nil
}

// readEpochsDirect performs the scheduled multi-range extraction,
// bypassing the cache.
func (r *Reader) readEpochsDirect(ctx context.Context, channels []int, ranges []types.SampleRange) (*types.EpochResult, error) {
	data := make([][][]float64, len(ranges))

	if r.Format == FormatMEF3 {
		for i, rng := range ranges {
			if err := ctx.Err(); err != nil {
				return nil, &CancelledError{Cause: err}
			}
			res, err := r.readRangeMEF3(channels, rng)
			if err != nil {
				return nil, err
			}
			data[i] = res.Data
		}
		return r.epochResult(channels, ranges, data), nil
	}

	// Decode in file order so a sequential source streams forward, but
	// keep the result in input order.
	order := make([]int, len(ranges))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranges[order[a]].Start < ranges[order[b]].Start
	})

	var spans []access.Span
	for _, rng := range ranges {
		spans = append(spans, byteSpans(r.header, channels, rng)...)
	}
	spans = access.MergeSpans(spans)

	var total int64
	for _, s := range spans {
		total += s.Len
	}

	src, strategy, err := r.source(total, true)
	if err != nil {
		return nil, err
	}

	// Under buffered access, prefetch each merged span once; overlapping
	// trials then share bytes instead of re-reading them. Mapped access
	// already serves overlaps from the page cache.
	if strategy == StrategyBuffered {
		w := access.NewWindowed(src, spans)
		defer w.Close()
		src = w
	}

	for _, idx := range order {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Cause: err}
		}
		res, err := decodeRange(r.header, src, channels, ranges[idx])
		if err != nil {
			return nil, err
		}
		data[idx] = res.Data
	}

	return r.epochResult(channels, ranges, data), nil
}

func (r *Reader) epochResult(channels []int, ranges []types.SampleRange, data [][][]float64) *types.EpochResult {
	return &types.EpochResult{
		Channels: append([]int(nil), channels...),
		Ranges:   append([]types.SampleRange(nil), ranges...),
		Data:     data,
	}
}

// sliceEpochs assembles the trial tensor from the preloaded matrix.
func sliceEpochs(full *types.ReadResult, channels []int, ranges []types.SampleRange) *types.EpochResult {
	data := make([][][]float64, len(ranges))
	for t, rng := range ranges {
		trial := make([][]float64, len(channels))
		for c, ch := range channels {
			row := make([]float64, rng.Count())
			copy(row, full.Data[ch][rng.Start:rng.End+1])
			trial[c] = row
		}
		data[t] = trial
	}
	return &types.EpochResult{
		Channels: append([]int(nil), channels...),
		Ranges:   append([]types.SampleRange(nil), ranges...),
		Data:     data,
	}
}

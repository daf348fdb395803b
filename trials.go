package ieegio

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ieegtools/ieegio/internal/types"
)

// TrialWindow is a time window in seconds relative to a trial onset.
// Start is typically negative (before the onset), End positive.
type TrialWindow struct {
	Start float64
	End   float64
}

// PaddingMode controls how trials that extend past the recording edges
// are handled.
type PaddingMode int

const (
	// PadNone rejects any trial that does not fit the recording.
	PadNone PaddingMode = iota
	// PadEdges pads only the first trial at the recording start and the
	// last trial at the recording end; any other out-of-bounds trial is
	// rejected.
	PadEdges
	// PadAll pads every out-of-bounds trial.
	PadAll
)

// BaselineMode selects the per-channel baseline statistic subtracted from
// each trial.
type BaselineMode int

const (
	// BaselineNone leaves trials unnormalized.
	BaselineNone BaselineMode = iota
	// BaselineMean subtracts the mean over the baseline window, ignoring
	// NaN padding.
	BaselineMean
	// BaselineMedian subtracts the median over the baseline window,
	// ignoring NaN padding.
	BaselineMedian
)

// TrialOption configures onset-based trial extraction.
type TrialOption func(*trialOptions)

type trialOptions struct {
	padding     PaddingMode
	baseline    BaselineMode
	baselineWin TrialWindow
}

func defaultTrialOptions() *trialOptions {
	return &trialOptions{
		padding:     PadNone,
		baseline:    BaselineNone,
		baselineWin: TrialWindow{Start: -1, End: -0.1},
	}
}

// WithPadding sets how trials that extend past the recording edges are
// handled. The default, PadNone, rejects them.
func WithPadding(mode PaddingMode) TrialOption {
	return func(o *trialOptions) {
		o.padding = mode
	}
}

// WithBaseline enables baseline normalization: the chosen statistic over
// the baseline window is subtracted per channel from each trial. The
// default baseline window is [-1 s, -0.1 s] relative to the onset; change
// it with WithBaselineWindow.
func WithBaseline(mode BaselineMode) TrialOption {
	return func(o *trialOptions) {
		o.baseline = mode
	}
}

// WithBaselineWindow sets the time window, relative to each onset, over
// which the baseline statistic is computed.
func WithBaselineWindow(win TrialWindow) TrialOption {
	return func(o *trialOptions) {
		o.baselineWin = win
	}
}

// ReadTrials extracts one equal-length trial per onset.
//
// Onsets are given in seconds from the recording start; win positions
// each trial relative to its onset, so win.Start is typically negative.
// The result is a trials × channels × samples tensor in onset order.
// Padded samples, where permitted by the padding mode, are NaN.
//
//	// 1 s before to 2 s after each stimulus, baseline-corrected.
//	res, err := reader.ReadTrials(channels, onsets,
//	    ieegio.TrialWindow{Start: -1, End: 2},
//	    ieegio.WithBaseline(ieegio.BaselineMean),
//	)
func (r *Reader) ReadTrials(channels []int, onsets []float64, win TrialWindow, opts ...TrialOption) (*EpochResult, error) {
	return r.ReadTrialsContext(context.Background(), channels, onsets, win, opts...)
}

// ReadTrialsContext is ReadTrials with cancellation between trials.
func (r *Reader) ReadTrialsContext(ctx context.Context, channels []int, onsets []float64, win TrialWindow, opts ...TrialOption) (*EpochResult, error) {
	options := defaultTrialOptions()
	for _, opt := range opts {
		opt(options)
	}

	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if err := types.ValidateSelection(channels, len(r.header.Channels)); err != nil {
		return nil, err
	}
	if win.End <= win.Start {
		return nil, fmt.Errorf("trial window [%g, %g] has end at or before start", win.Start, win.End)
	}

	rate := r.header.SampleRate
	length := int64(math.Round((win.End - win.Start) * rate))
	if length <= 0 {
		return nil, fmt.Errorf("trial window [%g, %g] spans no samples at %g Hz", win.Start, win.End, rate)
	}
	total := int64(r.header.SampleCount)

	data := make([][][]float64, len(onsets))
	ranges := make([]types.SampleRange, len(onsets))
	for t, onset := range onsets {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Cause: err}
		}

		start := int64(math.Round((onset + win.Start) * rate))
		end := start + length - 1

		if start < 0 || end >= total {
			if err := checkPadding(options.padding, t, len(onsets), start, end, total, onset); err != nil {
				return nil, err
			}
		}

		trial, err := r.readPaddedTrial(channels, start, length, total)
		if err != nil {
			return nil, err
		}

		if options.baseline != BaselineNone {
			if err := r.subtractBaseline(trial, channels, onset, rate, total, options); err != nil {
				return nil, err
			}
		}

		data[t] = trial
		// The reported range is the trial's intersection with the
		// recording; a fully padded trial keeps the zero range.
		if lo, hi := max(start, 0), min(end, total-1); lo <= hi {
			ranges[t] = types.SampleRange{Start: uint64(lo), End: uint64(hi)}
		}
	}

	return &types.EpochResult{
		Channels: append([]int(nil), channels...),
		Ranges:   ranges,
		Data:     data,
	}, nil
}

// checkPadding decides whether trial t, which extends past the recording,
// is allowed to be padded.
func checkPadding(mode PaddingMode, t, n int, start, end, total int64, onset float64) error {
	switch mode {
	case PadAll:
		return nil
	case PadEdges:
		if t == 0 && start < 0 && end < total {
			return nil
		}
		if t == n-1 && end >= total && start >= 0 {
			return nil
		}
	}
	return fmt.Errorf("trial at onset %gs spans samples [%d, %d] outside the recording (%d samples)",
		onset, start, end, total)
}

// readPaddedTrial returns the trial rows, NaN-filled where the window
// falls outside the recording.
func (r *Reader) readPaddedTrial(channels []int, start, length, total int64) ([][]float64, error) {
	trial := make([][]float64, len(channels))
	for c := range trial {
		row := make([]float64, length)
		for s := range row {
			row[s] = math.NaN()
		}
		trial[c] = row
	}

	lo := max(start, 0)
	hi := min(start+length-1, total-1)
	if lo > hi {
		// Entirely outside; all NaN.
		return trial, nil
	}

	res, err := r.ReadRange(channels, types.SampleRange{Start: uint64(lo), End: uint64(hi)})
	if err != nil {
		return nil, err
	}
	for c := range trial {
		copy(trial[c][lo-start:], res.Data[c])
	}
	return trial, nil
}

// subtractBaseline reads the baseline window for one onset and subtracts
// its per-channel statistic from the trial in place.
func (r *Reader) subtractBaseline(trial [][]float64, channels []int, onset, rate float64, total int64, options *trialOptions) error {
	bw := options.baselineWin
	bStart := int64(math.Round((onset + bw.Start) * rate))
	bLen := int64(math.Round((bw.End - bw.Start) * rate))
	if bLen <= 0 {
		return fmt.Errorf("baseline window [%g, %g] spans no samples at %g Hz", bw.Start, bw.End, rate)
	}

	lo := max(bStart, 0)
	hi := min(bStart+bLen-1, total-1)
	if lo > hi {
		return fmt.Errorf("baseline window for onset %gs lies entirely outside the recording", onset)
	}

	res, err := r.ReadRange(channels, types.SampleRange{Start: uint64(lo), End: uint64(hi)})
	if err != nil {
		return err
	}

	for c := range trial {
		var base float64
		switch options.baseline {
		case BaselineMedian:
			base = nanMedian(res.Data[c])
		default:
			base = nanMean(res.Data[c])
		}
		for s := range trial[c] {
			trial[c][s] -= base
		}
	}
	return nil
}

// nanMean returns the mean of the non-NaN values, or NaN if there are none.
func nanMean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanMedian returns the median of the non-NaN values, or NaN if there are
// none.
func nanMedian(values []float64) float64 {
	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return math.NaN()
	}
	sort.Float64s(kept)
	mid := len(kept) / 2
	if len(kept)%2 == 0 {
		return (kept[mid-1] + kept[mid]) / 2
	}
	return kept[mid]
}

package types

// ReadResult holds decoded physical values for one contiguous sample range.
//
// Data is indexed [channel][sample], with channels in the order of the
// selection that produced the result. The caller owns the result; readers
// never retain or mutate a returned ReadResult.
type ReadResult struct {
	Channels []int
	Range    SampleRange
	Data     [][]float64
}

// Clone returns a deep copy of the result.
func (r *ReadResult) Clone() *ReadResult {
	out := &ReadResult{
		Channels: make([]int, len(r.Channels)),
		Range:    r.Range,
		Data:     make([][]float64, len(r.Data)),
	}
	copy(out.Channels, r.Channels)
	for i, row := range r.Data {
		out.Data[i] = make([]float64, len(row))
		copy(out.Data[i], row)
	}
	return out
}

// EpochResult holds decoded physical values for a set of equal-length
// sample ranges ("trials").
//
// Data is indexed [trial][channel][sample]. Trial order matches the order
// of the ranges that produced the result, regardless of how the underlying
// I/O was scheduled.
type EpochResult struct {
	Channels []int
	Ranges   []SampleRange
	Data     [][][]float64
}

// Clone returns a deep copy of the result.
func (r *EpochResult) Clone() *EpochResult {
	out := &EpochResult{
		Channels: make([]int, len(r.Channels)),
		Ranges:   make([]SampleRange, len(r.Ranges)),
		Data:     make([][][]float64, len(r.Data)),
	}
	copy(out.Channels, r.Channels)
	copy(out.Ranges, r.Ranges)
	for t, trial := range r.Data {
		out.Data[t] = make([][]float64, len(trial))
		for c, row := range trial {
			out.Data[t][c] = make([]float64, len(row))
			copy(out.Data[t][c], row)
		}
	}
	return out
}

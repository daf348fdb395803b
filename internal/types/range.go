package types

// SampleRange is an inclusive, 0-indexed span of sample positions.
type SampleRange struct {
	Start uint64
	End   uint64
}

// Count returns the number of samples the range covers.
func (r SampleRange) Count() uint64 {
	return r.End - r.Start + 1
}

// Validate checks the range against a recording of sampleCount samples.
func (r SampleRange) Validate(sampleCount uint64) error {
	if r.Start > r.End || r.End >= sampleCount {
		return &RangeOutOfBoundsError{Start: r.Start, End: r.End, SampleCount: sampleCount}
	}
	return nil
}

// ValidateSelection checks a channel selection against a recording with
// count channels: every index must be in range and no index may repeat.
// The selection's order is significant and preserved by all readers.
func ValidateSelection(channels []int, count int) error {
	seen := make(map[int]bool, len(channels))
	for _, ch := range channels {
		if ch < 0 || ch >= count {
			return &UnknownChannelError{Index: ch, Count: count}
		}
		if seen[ch] {
			return &UnknownChannelError{Index: ch, Count: count, Duplicate: true}
		}
		seen[ch] = true
	}
	return nil
}

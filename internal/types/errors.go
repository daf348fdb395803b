package types

import "fmt"

// FormatError is returned when a header is malformed, truncated, or not
// recognizable as any supported format.
type FormatError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s: malformed header at offset %d: %s", e.Path, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: malformed header: %s", e.Path, e.Reason)
}

// UnsupportedVariantError is returned when a recognized format carries a
// field combination the canonical header model cannot represent.
type UnsupportedVariantError struct {
	Path   string
	Field  string
	Reason string
}

func (e *UnsupportedVariantError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: unsupported variant (%s): %s", e.Path, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: unsupported variant: %s", e.Path, e.Reason)
}

// MissingCompanionFileError is returned when a multi-file format references
// a sibling file that does not exist.
type MissingCompanionFileError struct {
	HeaderPath    string
	CompanionPath string
}

func (e *MissingCompanionFileError) Error() string {
	return fmt.Sprintf("%s: companion file %s does not exist", e.HeaderPath, e.CompanionPath)
}

// RangeOutOfBoundsError is returned when a requested sample range does not
// fit within the recording.
type RangeOutOfBoundsError struct {
	Start       uint64
	End         uint64
	SampleCount uint64
}

func (e *RangeOutOfBoundsError) Error() string {
	if e.Start > e.End {
		return fmt.Sprintf("sample range [%d, %d] has start after end", e.Start, e.End)
	}
	return fmt.Sprintf("sample range [%d, %d] out of bounds (recording has %d samples per channel)",
		e.Start, e.End, e.SampleCount)
}

// UnknownChannelError is returned when a channel selection names an index
// outside the header's channel list, or names the same index twice.
type UnknownChannelError struct {
	Index     int
	Count     int
	Duplicate bool
}

func (e *UnknownChannelError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("channel %d selected more than once", e.Index)
	}
	return fmt.Sprintf("unknown channel %d (recording has %d channels)", e.Index, e.Count)
}

// InconsistentEpochLengthError is returned when epoch ranges do not all
// share the same sample count.
type InconsistentEpochLengthError struct {
	Index int
	Got   uint64
	Want  uint64
}

func (e *InconsistentEpochLengthError) Error() string {
	return fmt.Sprintf("epoch range %d spans %d samples, want %d (all epoch ranges must have equal length)",
		e.Index, e.Got, e.Want)
}

// CorruptDataError is returned when a decoded sample violates the format's
// declared digital bounds.
type CorruptDataError struct {
	Path    string
	Offset  int64
	Channel int
	Sample  uint64
	Reason  string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("%s: corrupt data at offset %d (channel %d, sample %d): %s",
		e.Path, e.Offset, e.Channel, e.Sample, e.Reason)
}

// CancelledError is returned when a multi-range extraction is cancelled
// between range iterations. No partial results accompany it.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("extraction cancelled: %v", e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// IOError is returned when the underlying file read, map, or stat fails.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

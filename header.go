package ieegio

import (
	"github.com/ieegtools/ieegio/internal/types"
)

// Header is an alias to types.Header, the canonical format-independent
// description of a recording.
type Header = types.Header

// Channel is an alias to types.Channel.
type Channel = types.Channel

// SampleRange is an alias to types.SampleRange: an inclusive, 0-indexed
// span of sample positions.
type SampleRange = types.SampleRange

// ReadResult is an alias to types.ReadResult: a channels × samples matrix
// of physical values.
type ReadResult = types.ReadResult

// EpochResult is an alias to types.EpochResult: a trials × channels ×
// samples tensor of physical values.
type EpochResult = types.EpochResult

// Layout is an alias to types.Layout.
type Layout = types.Layout

// Re-export the layout constants.
const (
	LayoutMultiplexed = types.LayoutMultiplexed
	LayoutVectorized  = types.LayoutVectorized
)

// ByteOrder is an alias to types.ByteOrder.
type ByteOrder = types.ByteOrder

// Re-export the byte order constants.
const (
	LittleEndian = types.LittleEndian
	BigEndian    = types.BigEndian
)

// SampleType is an alias to types.SampleType.
type SampleType = types.SampleType

// Re-export the sample type constants.
const (
	Int16   = types.Int16
	Int32   = types.Int32
	Float32 = types.Float32
)

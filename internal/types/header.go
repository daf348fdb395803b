// Package types provides the core data structures shared by the ieegio
// format parsers and readers.
//
// This package defines the canonical Header model, sample ranges, read
// results and the typed errors used across all supported recording formats.
package types

import (
	"encoding/binary"
	"time"
)

// Layout describes how samples are arranged in the raw data region.
type Layout int

const (
	// LayoutMultiplexed stores one sample (or one record of samples) per
	// channel interleaved along the time axis. Reading a channel subset
	// still strides across the full record.
	LayoutMultiplexed Layout = iota
	// LayoutVectorized stores each channel's samples as one contiguous
	// block. Channel subsets and sample sub-ranges seek directly.
	LayoutVectorized
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case LayoutMultiplexed:
		return "multiplexed"
	case LayoutVectorized:
		return "vectorized"
	default:
		return "unknown"
	}
}

// ByteOrder identifies the endianness of raw sample words.
type ByteOrder int

const (
	// LittleEndian byte order (EDF, MEF3, BrainVision default).
	LittleEndian ByteOrder = iota
	// BigEndian byte order (BrainVision with UseBigEndianOrder=YES).
	BigEndian
)

// Order returns the matching encoding/binary byte order.
func (bo ByteOrder) Order() binary.ByteOrder {
	if bo == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// String returns a human-readable byte order name.
func (bo ByteOrder) String() string {
	if bo == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// SampleType identifies the on-disk representation of one sample word.
type SampleType int

const (
	// Int16 is a signed 16-bit integer sample (EDF, BrainVision INT_16).
	Int16 SampleType = iota
	// Int32 is a signed 32-bit integer sample (BrainVision INT_32).
	Int32
	// Float32 is an IEEE 754 single precision sample (BrainVision
	// IEEE_FLOAT_32).
	Float32
)

// Size returns the width of one sample word in bytes.
func (st SampleType) Size() int {
	switch st {
	case Int16:
		return 2
	case Int32:
		return 4
	case Float32:
		return 4
	default:
		return 0
	}
}

// String returns a human-readable sample type name.
func (st SampleType) String() string {
	switch st {
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	default:
		return "unknown"
	}
}

// Channel describes one recorded signal and how its raw samples convert to
// physical units.
//
// Calibrated channels (EDF) map digital counts through the four-point
// linear calibration. Uncalibrated channels (BrainVision) multiply by
// Scale. MEF3 channels arrive in physical units from the decoder and use
// Scale == 1.
type Channel struct {
	Label string
	Unit  string

	PhysicalMin float64
	PhysicalMax float64
	DigitalMin  float64
	DigitalMax  float64

	// Calibrated reports whether the digital/physical min/max pairs above
	// define the conversion. When false, Scale alone converts raw samples.
	Calibrated bool

	// Scale is the physical value of one raw unit for uncalibrated
	// channels (BrainVision "resolution").
	Scale float64
}

// Convert maps one raw sample value to physical units.
func (c *Channel) Convert(raw float64) float64 {
	if c.Calibrated {
		return c.PhysicalMin + (raw-c.DigitalMin)*(c.PhysicalMax-c.PhysicalMin)/(c.DigitalMax-c.DigitalMin)
	}
	return raw * c.Scale
}

// Header is the canonical, format-independent description of a recording.
//
// Parsers populate a Header from on-disk metadata; the channel list and its
// order are fixed after parsing. Byte-geometry fields (DataOffset through
// RecordDuration) describe the raw data region for formats the reader
// decodes itself; MEF3 delegates sample decoding and leaves them zero.
type Header struct {
	Format Format

	// SampleRate is the acquisition rate in Hz, identical for all channels.
	SampleRate float64
	// SampleCount is the total number of samples per channel.
	SampleCount uint64
	// Channels lists the exposed signals in on-disk order.
	Channels []Channel

	Layout     Layout
	ByteOrder  ByteOrder
	SampleType SampleType
	// BytesPerSample is the width of one sample word, 0 when the format is
	// not byte-addressable (MEF3 compressed data).
	BytesPerSample int

	// DataOffset is the byte offset of the raw data region in DataPath.
	DataOffset int64
	// RecordSamples is the number of samples per channel in one record for
	// record-chunked or interleaved layouts (EDF records, BrainVision
	// multiplexed frames). Zero for vectorized layouts.
	RecordSamples int
	// RecordStride is the total byte width of one record across all stored
	// signals, including signals excluded from Channels (EDF annotations).
	RecordStride int64
	// ChannelOffsets holds, per exposed channel, the byte offset of its
	// sample block: within a record for multiplexed layouts, relative to
	// DataOffset for vectorized layouts.
	ChannelOffsets []int64
	// RecordDuration is the length of one record in seconds, 0 when the
	// format is not record-chunked.
	RecordDuration float64

	// DataPath is the file holding raw samples. It equals the opened path
	// for single-file formats and the resolved companion file for
	// BrainVision.
	DataPath string

	// StartTime is the recording start, zero when the format does not
	// declare one.
	StartTime time.Time
}

// ChannelIndex returns the position of the channel with the given label.
func (h *Header) ChannelIndex(label string) (int, bool) {
	for i := range h.Channels {
		if h.Channels[i].Label == label {
			return i, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the header safe for callers to retain.
func (h *Header) Clone() Header {
	out := *h
	out.Channels = make([]Channel, len(h.Channels))
	copy(out.Channels, h.Channels)
	if h.ChannelOffsets != nil {
		out.ChannelOffsets = make([]int64, len(h.ChannelOffsets))
		copy(out.ChannelOffsets, h.ChannelOffsets)
	}
	return out
}

// Validate checks the invariants every parser must establish.
func (h *Header) Validate() error {
	if h.SampleRate <= 0 {
		return &FormatError{Path: h.DataPath, Reason: "non-positive sample rate"}
	}
	if len(h.Channels) == 0 {
		return &FormatError{Path: h.DataPath, Reason: "no channels"}
	}
	if h.ChannelOffsets != nil && len(h.ChannelOffsets) != len(h.Channels) {
		return &FormatError{Path: h.DataPath, Reason: "channel offset table does not match channel count"}
	}
	return nil
}

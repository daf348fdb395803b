// Package edf parses European Data Format (EDF/EDF+) headers.
//
// EDF stores a 256-byte fixed header followed by 256 bytes per signal,
// all space-padded ASCII, then sample-interleaved data records of 16-bit
// little-endian integers.
package edf

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ieegtools/ieegio/internal/registry"
	"github.com/ieegtools/ieegio/internal/types"
)

const (
	fixedHeaderBytes  = 256
	signalHeaderBytes = 256
	bytesPerSample    = 2

	// annotationsLabel marks EDF+ annotation signals, which carry text
	// events rather than samples and are excluded from the channel list.
	annotationsLabel = "EDF Annotations"
)

func init() {
	registry.Register(types.FormatEDF, &parser{})
}

type parser struct{}

// signal mirrors one per-signal header block.
type signal struct {
	label            string
	dimension        string
	physicalMin      float64
	physicalMax      float64
	digitalMin       float64
	digitalMax       float64
	samplesPerRecord int
}

// ParseHeader reads the EDF header and populates the canonical header.
// Sample data is never touched.
func (p *parser) ParseHeader(path string) (*types.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "stat", Err: err}
	}

	b := make([]byte, fixedHeaderBytes)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, &types.FormatError{Path: path, Reason: "truncated fixed header"}
	}

	if field(b, 0, 8) != "0" {
		return nil, &types.FormatError{Path: path, Reason: "bad version field, not an EDF file"}
	}

	startTime, err := parseStartTime(field(b, 168, 8), field(b, 176, 8))
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: 168, Reason: err.Error()}
	}

	headerBytes, err := parseInt(field(b, 184, 8), "header byte count")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: 184, Reason: err.Error()}
	}

	// EDF+ marks discontinuous recordings in the reserved field; their
	// records are not equidistant in time and cannot be addressed by a
	// global sample index.
	if strings.HasPrefix(field(b, 192, 44), "EDF+D") {
		return nil, &types.UnsupportedVariantError{Path: path, Field: "reserved", Reason: "discontinuous (EDF+D) recordings are not supported"}
	}

	records, err := parseInt(field(b, 236, 8), "record count")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: 236, Reason: err.Error()}
	}

	recordDuration, err := parseFloat(field(b, 244, 8), "record duration")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: 244, Reason: err.Error()}
	}
	if recordDuration <= 0 {
		return nil, &types.FormatError{Path: path, Offset: 244, Reason: "non-positive record duration"}
	}

	signalCount, err := parseInt(field(b, 252, 4), "signal count")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: 252, Reason: err.Error()}
	}
	if signalCount <= 0 {
		return nil, &types.FormatError{Path: path, Offset: 252, Reason: "no signals"}
	}
	if headerBytes != fixedHeaderBytes+signalCount*signalHeaderBytes {
		return nil, &types.FormatError{Path: path, Offset: 184,
			Reason: fmt.Sprintf("header byte count %d does not match %d signals", headerBytes, signalCount)}
	}

	signals, err := parseSignalHeaders(f, path, signalCount)
	if err != nil {
		return nil, err
	}

	// One record holds samplesPerRecord consecutive samples per signal, in
	// signal order. The stride covers every stored signal, annotations
	// included.
	var recordStride int64
	offsets := make([]int64, 0, signalCount)
	channels := make([]types.Channel, 0, signalCount)
	samplesPerRecord := 0
	for _, sig := range signals {
		if sig.label != annotationsLabel {
			if samplesPerRecord == 0 {
				samplesPerRecord = sig.samplesPerRecord
			} else if sig.samplesPerRecord != samplesPerRecord {
				return nil, &types.UnsupportedVariantError{Path: path, Field: "samples per record",
					Reason: "signals with mixed sampling rates are not supported"}
			}
			if sig.digitalMin == sig.digitalMax {
				return nil, &types.FormatError{Path: path,
					Reason: fmt.Sprintf("signal %q has equal digital minimum and maximum", sig.label)}
			}
			if sig.physicalMin == sig.physicalMax {
				return nil, &types.FormatError{Path: path,
					Reason: fmt.Sprintf("signal %q has equal physical minimum and maximum", sig.label)}
			}

			offsets = append(offsets, recordStride)
			channels = append(channels, types.Channel{
				Label:       sig.label,
				Unit:        sig.dimension,
				PhysicalMin: sig.physicalMin,
				PhysicalMax: sig.physicalMax,
				DigitalMin:  sig.digitalMin,
				DigitalMax:  sig.digitalMax,
				Calibrated:  true,
			})
		}
		recordStride += int64(sig.samplesPerRecord) * bytesPerSample
	}
	if len(channels) == 0 {
		return nil, &types.UnsupportedVariantError{Path: path, Field: "signals",
			Reason: "recording holds only annotation signals"}
	}

	// A record count of -1 means "unknown" (interrupted recordings); the
	// true count follows from the data region size.
	if records < 0 {
		records = int((fi.Size() - int64(headerBytes)) / recordStride)
	}
	if fi.Size() < int64(headerBytes)+int64(records)*recordStride {
		return nil, &types.FormatError{Path: path, Offset: int64(headerBytes),
			Reason: fmt.Sprintf("data region truncated: %d records of %d bytes do not fit", records, recordStride)}
	}

	hdr := &types.Header{
		Format:         types.FormatEDF,
		SampleRate:     float64(samplesPerRecord) / recordDuration,
		SampleCount:    uint64(records) * uint64(samplesPerRecord),
		Channels:       channels,
		Layout:         types.LayoutMultiplexed,
		ByteOrder:      types.LittleEndian,
		SampleType:     types.Int16,
		BytesPerSample: bytesPerSample,
		DataOffset:     int64(headerBytes),
		RecordSamples:  samplesPerRecord,
		RecordStride:   recordStride,
		ChannelOffsets: offsets,
		RecordDuration: recordDuration,
		DataPath:       path,
		StartTime:      startTime,
	}
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	return hdr, nil
}

// parseSignalHeaders reads the per-signal blocks, which store each field
// for all signals before moving to the next field.
func parseSignalHeaders(f *os.File, path string, count int) ([]signal, error) {
	b := make([]byte, count*signalHeaderBytes)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, &types.FormatError{Path: path, Offset: fixedHeaderBytes, Reason: "truncated signal headers"}
	}

	signals := make([]signal, count)
	off := 0

	next := func(width int) []string {
		out := make([]string, count)
		for i := range out {
			out[i] = strings.TrimSpace(string(b[off : off+width]))
			off += width
		}
		return out
	}

	labels := next(16)
	next(80) // transducer type
	dimensions := next(8)
	physMins := next(8)
	physMaxs := next(8)
	digMins := next(8)
	digMaxs := next(8)
	next(80) // prefiltering
	samples := next(8)

	for i := range signals {
		signals[i].label = labels[i]
		signals[i].dimension = dimensions[i]

		var err error
		if signals[i].physicalMin, err = parseFloat(physMins[i], "physical minimum"); err == nil {
			if signals[i].physicalMax, err = parseFloat(physMaxs[i], "physical maximum"); err == nil {
				if signals[i].digitalMin, err = parseFloat(digMins[i], "digital minimum"); err == nil {
					if signals[i].digitalMax, err = parseFloat(digMaxs[i], "digital maximum"); err == nil {
						signals[i].samplesPerRecord, err = parseInt(samples[i], "samples per record")
					}
				}
			}
		}
		if err != nil {
			return nil, &types.FormatError{Path: path,
				Reason: fmt.Sprintf("signal %d: %v", i, err)}
		}
		if signals[i].samplesPerRecord <= 0 {
			return nil, &types.FormatError{Path: path,
				Reason: fmt.Sprintf("signal %d: non-positive samples per record", i)}
		}
	}

	return signals, nil
}

// parseStartTime combines the dd.mm.yy and hh.mm.ss header fields.
func parseStartTime(dateStr, timeStr string) (time.Time, error) {
	date, err := time.Parse("02.01.06", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad start date %q", dateStr)
	}
	clock, err := time.Parse("15.04.05", timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad start time %q", timeStr)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC), nil
}

// field extracts a trimmed ASCII header field.
func field(b []byte, off, width int) string {
	return strings.TrimSpace(string(b[off : off+width]))
}

func parseInt(s, what string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, s)
	}
	return v, nil
}

func parseFloat(s, what string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, s)
	}
	return v, nil
}

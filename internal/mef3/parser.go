// Package mef3 parses Multiscale Electrophysiology Format 3.0 session
// metadata.
//
// A session is a directory tree: <session>.mefd holds one <channel>.timd
// directory per channel, each holding <segment>.segd directories with a
// .tmet time-series metadata file. Every MEF3 file opens with a 1024-byte
// universal header; the .tmet body carries the time-series metadata
// sections. All fields are little-endian.
//
// Sample data itself is block-compressed (RED codec) and is decoded by an
// external collaborator, not by this package.
package mef3

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ieegtools/ieegio/internal/binary"
	"github.com/ieegtools/ieegio/internal/registry"
	"github.com/ieegtools/ieegio/internal/types"
)

// Universal header layout (1024 bytes at the start of every MEF3 file).
const (
	universalHeaderBytes = 1024

	typeStringOffset    = 8
	typeStringBytes     = 5
	versionMajorOffset  = 13
	versionMinorOffset  = 14
	byteOrderCodeOffset = 15
	segmentNumberOffset = 48
	channelNameOffset   = 52
	channelNameBytes    = 256
	sessionNameOffset   = 308
	levelUUIDOffset     = 628
	fileUUIDOffset      = 644
	uuidBytes           = 16
)

// Metadata section 1 (768 bytes after the universal header).
const (
	section1Offset           = universalHeaderBytes
	section2EncryptionOffset = section1Offset
	section3EncryptionOffset = section1Offset + 1
	section1Bytes            = 768
)

// Time-series metadata section 2 field offsets, relative to the section
// start at universalHeaderBytes + section1Bytes.
const (
	tsSection2Offset = universalHeaderBytes + section1Bytes

	ts2AcquisitionChannelNumber = 6152
	ts2SamplingFrequency        = 6160
	ts2UnitsConversionFactor    = 6200
	ts2UnitsDescription         = 6208
	ts2UnitsDescriptionBytes    = 128
	ts2NumberOfSamples          = 6360
)

const timeSeriesMetadataType = "tmet"

func init() {
	registry.Register(types.FormatMEF3, &parser{})
}

type parser struct{}

// segmentMeta holds the parsed metadata of one segment's .tmet file.
type segmentMeta struct {
	path          string
	segmentNumber int32
	levelUUID     uuid.UUID
	samples       int64
}

// channelMeta aggregates a channel's segments.
type channelMeta struct {
	name       string
	acqNumber  int64
	rate       float64
	unit       string
	conversion float64
	samples    uint64
}

// ParseHeader walks the session directory and populates the canonical
// header from the per-channel time-series metadata. Compressed sample data
// is never read.
func (p *parser) ParseHeader(path string) (*types.Header, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "stat", Err: err}
	}
	if !fi.IsDir() {
		return nil, &types.FormatError{Path: path, Reason: "MEF3 session must be a directory"}
	}

	channelDirs, err := filepath.Glob(filepath.Join(path, "*.timd"))
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "glob", Err: err}
	}
	if len(channelDirs) == 0 {
		return nil, &types.FormatError{Path: path, Reason: "session contains no time-series channels (*.timd)"}
	}

	channels := make([]channelMeta, 0, len(channelDirs))
	for _, dir := range channelDirs {
		ch, err := parseChannel(dir)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}

	// Channel order follows the acquisition channel number, ties broken
	// by name, so the exposed indices are stable across directory listing
	// order.
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].acqNumber != channels[j].acqNumber {
			return channels[i].acqNumber < channels[j].acqNumber
		}
		return channels[i].name < channels[j].name
	})

	for _, ch := range channels[1:] {
		if ch.rate != channels[0].rate {
			return nil, &types.UnsupportedVariantError{Path: path, Field: "sampling frequency",
				Reason: fmt.Sprintf("channel %q samples at %g Hz, channel %q at %g Hz",
					ch.name, ch.rate, channels[0].name, channels[0].rate)}
		}
		if ch.samples != channels[0].samples {
			return nil, &types.UnsupportedVariantError{Path: path, Field: "sample count",
				Reason: fmt.Sprintf("channel %q holds %d samples, channel %q holds %d",
					ch.name, ch.samples, channels[0].name, channels[0].samples)}
		}
	}

	out := make([]types.Channel, len(channels))
	for i, ch := range channels {
		out[i] = types.Channel{
			Label: ch.name,
			Unit:  ch.unit,
			// The decoder returns physical units; no further scaling.
			Scale: 1,
		}
	}

	hdr := &types.Header{
		Format:      types.FormatMEF3,
		SampleRate:  channels[0].rate,
		SampleCount: channels[0].samples,
		Channels:    out,
		Layout:      types.LayoutVectorized,
		ByteOrder:   types.LittleEndian,
		// BytesPerSample stays 0: the data region is compressed and not
		// byte-addressable; decoding is delegated.
		DataPath: path,
	}
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	return hdr, nil
}

// parseChannel reads all segment metadata files of one .timd directory.
func parseChannel(dir string) (*channelMeta, error) {
	name := strings.TrimSuffix(filepath.Base(dir), ".timd")

	segmentDirs, err := filepath.Glob(filepath.Join(dir, "*.segd"))
	if err != nil {
		return nil, &types.IOError{Path: dir, Op: "glob", Err: err}
	}
	if len(segmentDirs) == 0 {
		return nil, &types.FormatError{Path: dir, Reason: "channel contains no segments (*.segd)"}
	}

	ch := &channelMeta{name: name}
	segments := make([]segmentMeta, 0, len(segmentDirs))
	for _, segDir := range segmentDirs {
		matches, err := filepath.Glob(filepath.Join(segDir, "*.tmet"))
		if err != nil {
			return nil, &types.IOError{Path: segDir, Op: "glob", Err: err}
		}
		if len(matches) == 0 {
			return nil, &types.MissingCompanionFileError{
				HeaderPath:    dir,
				CompanionPath: filepath.Join(segDir, name+".tmet"),
			}
		}

		seg, err := parseSegment(matches[0], name, ch)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].segmentNumber < segments[j].segmentNumber })

	for _, seg := range segments {
		if seg.samples < 0 {
			return nil, &types.FormatError{Path: seg.path, Reason: "negative sample count"}
		}
		// All segments of one channel share the channel-level UUID.
		if seg.levelUUID != segments[0].levelUUID {
			return nil, &types.FormatError{Path: seg.path,
				Reason: fmt.Sprintf("segment %d carries a different level UUID than segment %d",
					seg.segmentNumber, segments[0].segmentNumber)}
		}
		ch.samples += uint64(seg.samples)
	}

	return ch, nil
}

// parseSegment reads one .tmet file: universal header, encryption levels,
// and the time-series section 2 fields the canonical header needs. The
// first segment seen fills the channel-level fields.
func parseSegment(path, channelName string, ch *channelMeta) (*segmentMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, &types.IOError{Path: path, Op: "stat", Err: err}
	}
	if fi.Size() < tsSection2Offset+ts2NumberOfSamples+8 {
		return nil, &types.FormatError{Path: path, Reason: "metadata file too small"}
	}

	sr := binary.NewSafeReader(f, fi.Size(), path)

	r := binary.NewReader(sr, typeStringOffset)
	typeString, err := r.ReadString(typeStringBytes, "file type string")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: typeStringOffset, Reason: err.Error()}
	}
	if strings.TrimRight(typeString, "\x00") != timeSeriesMetadataType {
		return nil, &types.FormatError{Path: path, Offset: typeStringOffset,
			Reason: fmt.Sprintf("not a time-series metadata file (type %q)", strings.TrimRight(typeString, "\x00"))}
	}

	major, err := binary.ReadLE[uint8](sr, versionMajorOffset, "MEF version major")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: versionMajorOffset, Reason: err.Error()}
	}
	if major != 3 {
		return nil, &types.UnsupportedVariantError{Path: path, Field: "version",
			Reason: fmt.Sprintf("MEF version %d is not supported", major)}
	}

	byteOrderCode, err := binary.ReadLE[uint8](sr, byteOrderCodeOffset, "byte order code")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: byteOrderCodeOffset, Reason: err.Error()}
	}
	if byteOrderCode != 1 {
		return nil, &types.UnsupportedVariantError{Path: path, Field: "byte order",
			Reason: "big-endian MEF3 files are not supported"}
	}

	// Encrypted metadata needs password material this reader does not
	// handle.
	for _, off := range []int64{section2EncryptionOffset, section3EncryptionOffset} {
		level, err := binary.ReadLE[uint8](sr, off, "encryption level")
		if err != nil {
			return nil, &types.FormatError{Path: path, Offset: off, Reason: err.Error()}
		}
		if level != 0 {
			return nil, &types.UnsupportedVariantError{Path: path, Field: "encryption",
				Reason: "encrypted metadata sections are not supported"}
		}
	}

	headerChannel, err := readFixedString(sr, channelNameOffset, channelNameBytes, "channel name")
	if err != nil {
		return nil, err
	}
	if headerChannel != channelName {
		return nil, &types.FormatError{Path: path, Offset: channelNameOffset,
			Reason: fmt.Sprintf("header names channel %q but file lives under %q.timd", headerChannel, channelName)}
	}

	levelUUID, err := readUUID(sr, levelUUIDOffset, "level UUID")
	if err != nil {
		return nil, err
	}
	fileUUID, err := readUUID(sr, fileUUIDOffset, "file UUID")
	if err != nil {
		return nil, err
	}
	if fileUUID == uuid.Nil {
		return nil, &types.FormatError{Path: path, Offset: fileUUIDOffset, Reason: "nil file UUID"}
	}

	segNum, err := binary.ReadLE[uint32](sr, segmentNumberOffset, "segment number")
	if err != nil {
		return nil, &types.FormatError{Path: path, Offset: segmentNumberOffset, Reason: err.Error()}
	}

	samples, err := binary.ReadLE[uint64](sr, tsSection2Offset+ts2NumberOfSamples, "number of samples")
	if err != nil {
		return nil, &types.FormatError{Path: path, Reason: err.Error()}
	}

	// Channel-level fields: fill from the first segment, verify against
	// later ones.
	rateBits, err := binary.ReadLE[uint64](sr, tsSection2Offset+ts2SamplingFrequency, "sampling frequency")
	if err != nil {
		return nil, &types.FormatError{Path: path, Reason: err.Error()}
	}
	rate := math.Float64frombits(rateBits)

	acqBits, err := binary.ReadLE[uint64](sr, tsSection2Offset+ts2AcquisitionChannelNumber, "acquisition channel number")
	if err != nil {
		return nil, &types.FormatError{Path: path, Reason: err.Error()}
	}

	unit, err := readFixedString(sr, tsSection2Offset+ts2UnitsDescription, ts2UnitsDescriptionBytes, "units description")
	if err != nil {
		return nil, err
	}

	if ch.rate == 0 {
		ch.rate = rate
		ch.acqNumber = int64(acqBits)
		ch.unit = unit
	} else if ch.rate != rate {
		return nil, &types.FormatError{Path: path,
			Reason: fmt.Sprintf("segment samples at %g Hz, earlier segments at %g Hz", rate, ch.rate)}
	}

	return &segmentMeta{
		path:          path,
		segmentNumber: int32(segNum),
		levelUUID:     levelUUID,
		samples:       int64(samples),
	}, nil
}

// readFixedString reads a NUL-padded fixed-width string field.
func readFixedString(sr *binary.SafeReader, off int64, width int, what string) (string, error) {
	r := binary.NewReader(sr, off)
	raw, err := r.ReadBytes(width, what)
	if err != nil {
		return "", &types.FormatError{Path: sr.Path(), Offset: off, Reason: err.Error()}
	}
	if i := strings.IndexByte(string(raw), 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw), nil
}

// readUUID reads a 16-byte UUID field.
func readUUID(sr *binary.SafeReader, off int64, what string) (uuid.UUID, error) {
	r := binary.NewReader(sr, off)
	raw, err := r.ReadBytes(uuidBytes, what)
	if err != nil {
		return uuid.Nil, &types.FormatError{Path: sr.Path(), Offset: off, Reason: err.Error()}
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, &types.FormatError{Path: sr.Path(), Offset: off, Reason: err.Error()}
	}
	return id, nil
}

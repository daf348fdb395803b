// Package brainvision parses BrainVision Core Data Format headers.
//
// A recording is split across files: the .vhdr header (INI syntax with a
// mandatory identification line), the raw binary data file it names, and
// an optional marker file. Only the header is parsed here; the data file
// is stat'ed to derive the sample count.
package brainvision

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/ieegtools/ieegio/internal/registry"
	"github.com/ieegtools/ieegio/internal/types"
)

func init() {
	registry.Register(types.FormatBrainVision, &parser{})
}

type parser struct{}

// ParseHeader reads a .vhdr file, resolves the companion data file, and
// populates the canonical header.
func (p *parser) ParseHeader(path string) (*types.Header, error) {
	// The identification line is not INI syntax; skip unrecognizable
	// lines and verify the magic separately via the format probe.
	if _, err := types.DetectFormat(path); err != nil {
		return nil, err
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{SkipUnrecognizableLines: true}, path)
	if err != nil {
		return nil, &types.FormatError{Path: path, Reason: fmt.Sprintf("bad header syntax: %v", err)}
	}

	common := cfg.Section("Common Infos")
	if common == nil || len(common.Keys()) == 0 {
		return nil, &types.FormatError{Path: path, Reason: "missing [Common Infos] section"}
	}

	if format := common.Key("DataFormat").MustString("BINARY"); !strings.EqualFold(format, "BINARY") {
		return nil, &types.UnsupportedVariantError{Path: path, Field: "DataFormat",
			Reason: fmt.Sprintf("%s data is not supported", format)}
	}

	layout := types.LayoutMultiplexed
	switch orientation := common.Key("DataOrientation").MustString("MULTIPLEXED"); {
	case strings.EqualFold(orientation, "MULTIPLEXED"):
	case strings.EqualFold(orientation, "VECTORIZED"):
		layout = types.LayoutVectorized
	default:
		return nil, &types.UnsupportedVariantError{Path: path, Field: "DataOrientation",
			Reason: fmt.Sprintf("unknown orientation %q", orientation)}
	}

	channelCount, err := common.Key("NumberOfChannels").Int()
	if err != nil || channelCount <= 0 {
		return nil, &types.FormatError{Path: path, Reason: "missing or invalid NumberOfChannels"}
	}

	// SamplingInterval is in microseconds.
	interval, err := common.Key("SamplingInterval").Float64()
	if err != nil || interval <= 0 {
		return nil, &types.FormatError{Path: path, Reason: "missing or invalid SamplingInterval"}
	}
	sampleRate := 1e6 / interval

	sampleType, byteOrder, err := parseBinaryInfos(cfg, path)
	if err != nil {
		return nil, err
	}

	channels, err := parseChannelInfos(cfg, path, channelCount)
	if err != nil {
		return nil, err
	}

	dataFile := common.Key("DataFile").String()
	if dataFile == "" {
		return nil, &types.FormatError{Path: path, Reason: "missing DataFile entry"}
	}
	dataPath, err := resolveCompanion(path, dataFile)
	if err != nil {
		return nil, err
	}

	fi, err := os.Stat(dataPath)
	if err != nil {
		return nil, &types.MissingCompanionFileError{HeaderPath: path, CompanionPath: dataPath}
	}

	bytesPerSample := sampleType.Size()
	frameBytes := int64(channelCount) * int64(bytesPerSample)
	if fi.Size()%frameBytes != 0 {
		return nil, &types.FormatError{Path: dataPath,
			Reason: fmt.Sprintf("data size %d is not a whole number of %d-byte sample frames", fi.Size(), frameBytes)}
	}
	sampleCount := uint64(fi.Size() / frameBytes)

	hdr := &types.Header{
		Format:         types.FormatBrainVision,
		SampleRate:     sampleRate,
		SampleCount:    sampleCount,
		Channels:       channels,
		Layout:         layout,
		ByteOrder:      byteOrder,
		SampleType:     sampleType,
		BytesPerSample: bytesPerSample,
		DataPath:       dataPath,
	}

	offsets := make([]int64, channelCount)
	if layout == types.LayoutMultiplexed {
		// One frame per time step, one sample per channel.
		hdr.RecordSamples = 1
		hdr.RecordStride = frameBytes
		for i := range offsets {
			offsets[i] = int64(i) * int64(bytesPerSample)
		}
	} else {
		for i := range offsets {
			offsets[i] = int64(i) * int64(sampleCount) * int64(bytesPerSample)
		}
	}
	hdr.ChannelOffsets = offsets

	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	return hdr, nil
}

// parseBinaryInfos maps the [Binary Infos] section to a sample type and
// byte order.
func parseBinaryInfos(cfg *ini.File, path string) (types.SampleType, types.ByteOrder, error) {
	section := cfg.Section("Binary Infos")

	var sampleType types.SampleType
	switch format := section.Key("BinaryFormat").MustString("INT_16"); {
	case strings.EqualFold(format, "INT_16"):
		sampleType = types.Int16
	case strings.EqualFold(format, "INT_32"):
		sampleType = types.Int32
	case strings.EqualFold(format, "IEEE_FLOAT_32"):
		sampleType = types.Float32
	default:
		return 0, 0, &types.UnsupportedVariantError{Path: path, Field: "BinaryFormat",
			Reason: fmt.Sprintf("unknown binary format %q", format)}
	}

	byteOrder := types.LittleEndian
	switch endian := section.Key("UseBigEndianOrder").MustString("NO"); {
	case strings.EqualFold(endian, "NO"):
	case strings.EqualFold(endian, "YES"):
		byteOrder = types.BigEndian
	default:
		return 0, 0, &types.UnsupportedVariantError{Path: path, Field: "UseBigEndianOrder",
			Reason: fmt.Sprintf("unknown byte order %q", endian)}
	}

	return sampleType, byteOrder, nil
}

// parseChannelInfos reads Ch1..ChN entries of the form
// "label,reference,resolution,unit".
func parseChannelInfos(cfg *ini.File, path string, count int) ([]types.Channel, error) {
	section := cfg.Section("Channel Infos")

	channels := make([]types.Channel, count)
	for i := range channels {
		key := fmt.Sprintf("Ch%d", i+1)
		entry := section.Key(key).String()
		if entry == "" {
			return nil, &types.FormatError{Path: path, Reason: "missing channel entry " + key}
		}

		parts := strings.Split(entry, ",")
		// Commas inside channel names are escaped as "\1".
		label := strings.ReplaceAll(parts[0], `\1`, ",")

		scale := 1.0
		if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil || v <= 0 {
				return nil, &types.FormatError{Path: path,
					Reason: fmt.Sprintf("channel %s has invalid resolution %q", key, parts[2])}
			}
			scale = v
		}

		unit := "µV"
		if len(parts) > 3 && strings.TrimSpace(parts[3]) != "" {
			unit = strings.TrimSpace(parts[3])
		}

		channels[i] = types.Channel{
			Label: label,
			Unit:  unit,
			Scale: scale,
		}
	}

	return channels, nil
}

// resolveCompanion resolves a companion file name relative to the header
// directory. The "$b" macro expands to the header's base name.
func resolveCompanion(headerPath, name string) (string, error) {
	if strings.Contains(name, "$b") {
		base := strings.TrimSuffix(filepath.Base(headerPath), filepath.Ext(headerPath))
		name = strings.ReplaceAll(name, "$b", base)
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(filepath.Dir(headerPath), name), nil
}

package ieegio

import (
	"github.com/ieegtools/ieegio/internal/access"
	"github.com/ieegtools/ieegio/internal/types"
)

// Format is an alias to types.Format.
// Re-exporting from internal/types to keep the public API in one package.
type Format = types.Format

// Re-export all format constants.
const (
	FormatUnknown     = types.FormatUnknown
	FormatEDF         = types.FormatEDF
	FormatBrainVision = types.FormatBrainVision
	FormatMEF3        = types.FormatMEF3
)

// DetectFormat determines the recording format for a path by extension
// and a magic-byte probe. Maintains the public API while delegating to
// the internal implementation.
func DetectFormat(path string) (Format, error) {
	return types.DetectFormat(path)
}

// Strategy is an alias to access.Strategy, selecting how raw bytes are
// fetched from the data file.
type Strategy = access.Strategy

// Re-export the access strategy constants.
const (
	// StrategyAuto picks memory-mapped access for single-range reads and
	// buffered chunked access for epoch extraction whose byte volume
	// exceeds the configured threshold.
	StrategyAuto = access.StrategyAuto
	// StrategyMmap forces memory-mapped access.
	StrategyMmap = access.StrategyMmap
	// StrategyBuffered forces buffered chunked access.
	StrategyBuffered = access.StrategyBuffered
)

package ieegio

import (
	"github.com/ieegtools/ieegio/internal/types"
)

// FormatError is an alias to types.FormatError.
// Re-exporting from internal/types to keep the public API in one package.
type FormatError = types.FormatError

// UnsupportedVariantError is an alias to types.UnsupportedVariantError.
type UnsupportedVariantError = types.UnsupportedVariantError

// MissingCompanionFileError is an alias to types.MissingCompanionFileError.
type MissingCompanionFileError = types.MissingCompanionFileError

// RangeOutOfBoundsError is an alias to types.RangeOutOfBoundsError.
type RangeOutOfBoundsError = types.RangeOutOfBoundsError

// UnknownChannelError is an alias to types.UnknownChannelError.
type UnknownChannelError = types.UnknownChannelError

// InconsistentEpochLengthError is an alias to types.InconsistentEpochLengthError.
type InconsistentEpochLengthError = types.InconsistentEpochLengthError

// CorruptDataError is an alias to types.CorruptDataError.
type CorruptDataError = types.CorruptDataError

// CancelledError is an alias to types.CancelledError.
type CancelledError = types.CancelledError

// IOError is an alias to types.IOError.
type IOError = types.IOError

// Package registry manages format-specific header parsers for recording
// file types.
package registry

import (
	"github.com/ieegtools/ieegio/internal/types"
)

// HeaderParser is the interface all format header parsers implement.
type HeaderParser interface {
	// ParseHeader reads on-disk metadata and populates the canonical
	// header. It never touches sample data.
	ParseHeader(path string) (*types.Header, error)
}

// parsers maps formats to their header parsers.
var parsers = make(map[types.Format]HeaderParser)

// Register registers a parser for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, parser HeaderParser) {
	parsers[format] = parser
}

// Get returns the parser for a given format.
// Returns nil if no parser is registered for the format.
func Get(format types.Format) HeaderParser {
	return parsers[format]
}

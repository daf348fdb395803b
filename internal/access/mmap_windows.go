//go:build windows

package access

import (
	"errors"

	"github.com/ieegtools/ieegio/internal/types"
)

// OpenMmap is unavailable on Windows; callers fall back to the buffered
// source.
func OpenMmap(path string) (Source, error) {
	return nil, &types.IOError{Path: path, Op: "mmap", Err: errors.New("memory mapping not supported on this platform")}
}

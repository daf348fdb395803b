//go:build !linux

package access

// AvailableMemory reports 0 on platforms without a memory probe; callers
// use a fixed fallback threshold instead.
func AvailableMemory() uint64 {
	return 0
}

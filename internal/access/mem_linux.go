//go:build linux

package access

import "syscall"

// AvailableMemory reports the free physical memory in bytes, probed once
// at Reader open time to pick the auto-strategy crossover threshold.
// Returns 0 when the probe fails.
func AvailableMemory() uint64 {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return 0
	}
	return uint64(info.Freeram) * uint64(info.Unit)
}

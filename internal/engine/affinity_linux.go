//go:build linux

package engine

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinThreshold is the worker count above which pinning starts to pay off.
// Below it the scheduler does fine on its own.
const pinThreshold = 10

// PinThreads requests best-effort core pinning when the engine worker pool
// is large: the calling thread is pinned to the last logical CPU so the
// workers can claim the rest. It has no correctness impact and reports
// whether pinning was attempted.
func PinThreads(numThreads int) bool {
	if numThreads <= pinThreshold {
		return false
	}
	n := runtime.NumCPU()
	if n < 2 {
		return false
	}
	runtime.LockOSThread()
	var set unix.CPUSet
	set.Zero()
	set.Set(n - 1)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return false
	}
	return true
}

//go:build !linux

package engine

// PinThreads is a no-op on platforms without sched_setaffinity.
func PinThreads(numThreads int) bool {
	return false
}

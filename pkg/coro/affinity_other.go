//go:build !linux

package coro

import "runtime"

// DetectWorkerCount falls back to runtime.NumCPU on platforms without
// sched_getaffinity; see affinity_linux.go for the container-aware path.
func DetectWorkerCount() int {
	return runtime.NumCPU()
}

//go:build linux

package coro

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// DetectWorkerCount sizes the default worker pool from the CPU set this
// process is actually allowed to run on (honoring cgroup/taskset quotas via
// sched_getaffinity), falling back to runtime.NumCPU if the syscall fails.
// This is the Go analog of spec.md §4.G's "queries the OS for core count",
// made container-aware rather than reporting the whole machine's core
// count the way a naive runtime.NumCPU()-only implementation would.
func DetectWorkerCount() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return runtime.NumCPU()
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

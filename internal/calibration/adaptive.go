// This file generates the worker counts tried during calibration.

package calibration

import (
	"runtime"
)

// GenerateWorkerCounts returns the powers of two up to the number of logical
// CPUs, always ending with the CPU count itself: {1, 2, 4, ..., NumCPU}.
func GenerateWorkerCounts() []int {
	return workerCounts(runtime.NumCPU())
}

// GenerateQuickWorkerCounts returns a reduced set for a fast check: one
// worker, half the CPUs and all of them.
func GenerateQuickWorkerCounts() []int {
	numCPU := runtime.NumCPU()
	counts := []int{1}
	if half := numCPU / 2; half > 1 {
		counts = append(counts, half)
	}
	if numCPU > 1 {
		counts = append(counts, numCPU)
	}
	return counts
}

func workerCounts(numCPU int) []int {
	if numCPU < 1 {
		numCPU = 1
	}
	var counts []int
	for w := 1; w < numCPU; w *= 2 {
		counts = append(counts, w)
	}
	return append(counts, numCPU)
}

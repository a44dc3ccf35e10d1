// internal/runutil/runutil.go
package runutil

import "runtime"

// ResolveThreads maps 0 (or negative) to the number of CPUs.
func ResolveThreads(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// ComputeOverlap returns the chunk overlap that keeps every window of the
// longest matrix inside at least one chunk.
func ComputeOverlap(maxMatrixLen int) int {
	if maxMatrixLen <= 1 {
		return 0
	}
	return maxMatrixLen - 1
}

// ValidateChunking decides whether chunking is allowed, returns (chunkSize, overlap, warnings).
// Rules:
//   - --chunk-size <= 0 → no chunking
//   - --chunk-size must exceed the longest matrix, otherwise chunking is disabled
//
// When enabled, overlap is ComputeOverlap(maxMatrixLen).
func ValidateChunking(chunkSize, maxMatrixLen int) (int, int, []string) {
	if chunkSize <= 0 {
		return 0, 0, nil
	}
	if chunkSize <= maxMatrixLen {
		return 0, 0, []string{"--chunk-size must be > the longest matrix; disabling chunking"}
	}
	return chunkSize, ComputeOverlap(maxMatrixLen), nil
}

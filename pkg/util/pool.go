package util

import "runtime"

// GetOptimalPoolSize returns the default fan-out for page fetches and
// per-page extraction.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Fetches are I/O bound and rate limited separately, so the cap mostly
// bounds open connections rather than CPU.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2

	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}

	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}

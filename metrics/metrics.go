// Package metrics computes population-level statistics over the byte
// programs living in a soup: a compression-based complexity estimate plus
// simple counting statistics used to track diversity over time.
package metrics

import (
	"bytes"

	"github.com/andybalholm/brotli"
)

// brotliQuality trades compression ratio for speed. Quality 2 is fast enough
// to run every epoch over a whole population while still separating
// structured from random data.
const brotliQuality = 2

// HighOrderEntropy estimates the normalized complexity of data as the ratio
// of its brotli-compressed size to its raw size. A value near 1.0 means data
// is close to incompressible (effectively random); a value well below 1.0
// means it is highly structured or repetitive. Compression overhead can push
// the ratio slightly above 1.0 on already-random input.
func HighOrderEntropy(data []byte) float64 {
	if len(data) == 0 {
		return 0.0
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotliQuality)
	if _, err := w.Write(data); err != nil {
		panic("brotli compression should not fail on valid input: " + err.Error())
	}
	if err := w.Close(); err != nil {
		panic("brotli compression should not fail on valid input: " + err.Error())
	}

	return float64(buf.Len()) / float64(len(data))
}

// UniqueProgramCount returns the number of distinct byte sequences among programs.
func UniqueProgramCount(programs [][]byte) int {
	set := make(map[string]struct{}, len(programs))
	for _, p := range programs {
		set[string(p)] = struct{}{}
	}
	return len(set)
}

// ZeroByteCount returns the total number of zero-valued bytes across all programs.
func ZeroByteCount(programs [][]byte) int {
	count := 0
	for _, p := range programs {
		for _, b := range p {
			if b == 0 {
				count++
			}
		}
	}
	return count
}

// ByteFrequencyHistogram returns a 256-entry count of byte values across all programs.
func ByteFrequencyHistogram(programs [][]byte) [256]int {
	var hist [256]int
	for _, p := range programs {
		for _, b := range p {
			hist[b]++
		}
	}
	return hist
}

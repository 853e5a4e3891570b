// Package chart holds the pure math behind the storage-usage widget.
// Everything here is a function of its inputs; no state, no I/O.
package chart

import (
	"fmt"
	"math"
	"strconv"
)

// Percentage returns used as a percentage of capacity, rounded to two
// decimal places. A non-positive capacity yields 0.
func Percentage(used, capacity int64) float64 {
	if capacity <= 0 {
		return 0
	}
	p := float64(used) / float64(capacity) * 100
	return math.Round(p*100) / 100
}

// DisplayPercentage formats the usage percentage for the radial widget.
// Values below 1% get a leading zero, e.g. "00.05%".
func DisplayPercentage(used, capacity int64) string {
	p := Percentage(used, capacity)
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if p < 1 {
		return "0" + s + "%"
	}
	return s + "%"
}

// FileSize renders a byte count as a human-readable size string.
func FileSize(sizeInBytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)

	switch {
	case sizeInBytes < kb:
		return fmt.Sprintf("%d Bytes", sizeInBytes)
	case sizeInBytes < mb:
		return fmt.Sprintf("%.1f KB", float64(sizeInBytes)/kb)
	case sizeInBytes < gb:
		return fmt.Sprintf("%.1f MB", float64(sizeInBytes)/mb)
	default:
		return fmt.Sprintf("%.1f GB", float64(sizeInBytes)/gb)
	}
}

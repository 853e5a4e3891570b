package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const capacity = 2 * 1024 * 1024 * 1024

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, capacity))
	assert.Equal(t, 50.0, Percentage(capacity/2, capacity))
	assert.Equal(t, 100.0, Percentage(capacity, capacity))
	assert.Equal(t, 0.0, Percentage(123, 0))

	// 3 MB of 2 GiB is well under a percent
	p := Percentage(3_000_000, capacity)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
}

func TestDisplayPercentage(t *testing.T) {
	// below 1% the widget shows a leading zero
	assert.Equal(t, "00.14%", DisplayPercentage(3_000_000, capacity))
	assert.Equal(t, "50%", DisplayPercentage(capacity/2, capacity))
	assert.Equal(t, "00%", DisplayPercentage(0, capacity))
}

func TestFileSize(t *testing.T) {
	assert.Equal(t, "0 Bytes", FileSize(0))
	assert.Equal(t, "512 Bytes", FileSize(512))
	assert.Equal(t, "1.0 KB", FileSize(1024))
	assert.Equal(t, "1.5 KB", FileSize(1536))
	assert.Equal(t, "2.9 MB", FileSize(3_000_000))
	assert.Equal(t, "2.0 GB", FileSize(capacity))
}

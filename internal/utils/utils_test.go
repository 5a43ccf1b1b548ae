package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "blue", NormalizeColor(" Blue "))
	assert.Equal(t, "khaki", NormalizeColor("KHAKI"))
	assert.Equal(t, "", NormalizeColor("   "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jordan@example.com", NormalizeEmail(" Jordan@Example.COM "))
}

func TestExpectedTimeline(t *testing.T) {
	teeTime := time.Date(2025, 6, 14, 8, 30, 0, 0, time.UTC)
	timeline := ExpectedTimeline(teeTime)

	assert.Len(t, timeline, 18)
	assert.Equal(t, teeTime, timeline["hole_01"])
	assert.Equal(t, teeTime.Add(15*time.Minute), timeline["hole_02"])
	assert.Equal(t, teeTime.Add(17*15*time.Minute), timeline["hole_18"])
}

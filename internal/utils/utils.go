package utils

import (
	"fmt"
	"strings"
	"time"
)

// minutes a group is expected to spend on one hole
const minutesPerHole = 15

// NormalizeColor lowercases and trims a declared clothing color so matching
// and storage agree on one form.
func NormalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

// NormalizeEmail lowercases and trims an email address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ExpectedTimeline projects a tee time across all 18 holes.
func ExpectedTimeline(teeTime time.Time) map[string]time.Time {
	timeline := make(map[string]time.Time, 18)
	current := teeTime
	for hole := 1; hole <= 18; hole++ {
		timeline[fmt.Sprintf("hole_%02d", hole)] = current
		current = current.Add(minutesPerHole * time.Minute)
	}
	return timeline
}

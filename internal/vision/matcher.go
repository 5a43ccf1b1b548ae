package vision

import (
	"strings"
	"time"
)

// MatchPlayers pairs enriched detections against the expected-player roster
// by clothing-color overlap. For each detection the roster is scanned in
// caller order and the first player whose declared top or bottom color
// matches wins; later roster entries with the same color are unreachable for
// that detection. Nothing prevents two detections in the same frame from
// matching the same player.
func MatchPlayers(detections []EnrichedDetection, roster []ExpectedPlayer, matchedAt time.Time) []Match {
	matches := make([]Match, 0, len(detections))
	for _, d := range detections {
		if d.ClothingColor == ColorUnknown {
			continue
		}
		for _, p := range roster {
			color, ok := playerColorMatch(p, d.ClothingColor)
			if !ok {
				continue
			}
			matches = append(matches, Match{
				DetectionID:  d.Identity,
				PlayerID:     p.PlayerID,
				PlayerName:   p.DisplayName,
				Confidence:   d.Score,
				MatchedColor: color,
				MatchedAt:    matchedAt,
			})
			break
		}
	}
	return matches
}

// playerColorMatch reports whether the detection color is a case-insensitive
// member of the player's declared top/bottom colors, returning the declared
// value that matched.
func playerColorMatch(p ExpectedPlayer, detected string) (string, bool) {
	if strings.EqualFold(p.Clothing.TopColor, detected) {
		return p.Clothing.TopColor, true
	}
	if strings.EqualFold(p.Clothing.BottomColor, detected) {
		return p.Clothing.BottomColor, true
	}
	return "", false
}

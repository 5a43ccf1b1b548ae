package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func enrichedWithColor(id, color string, score float64) EnrichedDetection {
	return EnrichedDetection{
		Detection:     Detection{Class: ClassPerson, Score: score},
		ClothingColor: color,
		Identity:      id,
	}
}

func TestMatchPlayersCaseInsensitive(t *testing.T) {
	roster := []ExpectedPlayer{{
		PlayerID:    "p1",
		DisplayName: "Jordan",
		Clothing:    ClothingDescriptor{TopColor: "Blue", BottomColor: "Khaki"},
	}}
	at := time.Now()

	matches := MatchPlayers([]EnrichedDetection{enrichedWithColor("d1", "blue", 0.92)}, roster, at)

	assert.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].PlayerID)
	assert.Equal(t, "Jordan", matches[0].PlayerName)
	assert.Equal(t, "d1", matches[0].DetectionID)
	assert.Equal(t, 0.92, matches[0].Confidence)
	assert.Equal(t, "Blue", matches[0].MatchedColor, "matched color keeps the declared form")
	assert.Equal(t, at, matches[0].MatchedAt)
}

func TestMatchPlayersBottomColor(t *testing.T) {
	roster := []ExpectedPlayer{{
		PlayerID: "p1",
		Clothing: ClothingDescriptor{TopColor: "White", BottomColor: "Black"},
	}}

	matches := MatchPlayers([]EnrichedDetection{enrichedWithColor("d1", "black", 0.7)}, roster, time.Now())
	assert.Len(t, matches, 1)
	assert.Equal(t, "Black", matches[0].MatchedColor)
}

// first roster hit wins, reproducibly
func TestMatchPlayersRosterOrder(t *testing.T) {
	roster := []ExpectedPlayer{
		{PlayerID: "p1", Clothing: ClothingDescriptor{TopColor: "blue", BottomColor: "white"}},
		{PlayerID: "p2", Clothing: ClothingDescriptor{TopColor: "blue", BottomColor: "gray"}},
	}
	detections := []EnrichedDetection{enrichedWithColor("d1", "blue", 0.9)}

	for i := 0; i < 50; i++ {
		matches := MatchPlayers(detections, roster, time.Now())
		assert.Len(t, matches, 1)
		assert.Equal(t, "p1", matches[0].PlayerID)
	}
}

// two detections may map to the same player; the matcher does not dedup
func TestMatchPlayersDuplicatePlayer(t *testing.T) {
	roster := []ExpectedPlayer{
		{PlayerID: "p1", Clothing: ClothingDescriptor{TopColor: "red", BottomColor: "white"}},
	}
	detections := []EnrichedDetection{
		enrichedWithColor("d1", "red", 0.9),
		enrichedWithColor("d2", "red", 0.8),
	}

	matches := MatchPlayers(detections, roster, time.Now())
	assert.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].PlayerID)
	assert.Equal(t, "p1", matches[1].PlayerID)
}

func TestMatchPlayersSkipsUnknownAndUnmatched(t *testing.T) {
	roster := []ExpectedPlayer{
		{PlayerID: "p1", Clothing: ClothingDescriptor{TopColor: "green", BottomColor: "white"}},
	}
	detections := []EnrichedDetection{
		enrichedWithColor("d1", ColorUnknown, 0.9),
		enrichedWithColor("d2", "purple", 0.9),
	}

	matches := MatchPlayers(detections, roster, time.Now())
	assert.Empty(t, matches)
}

func TestMatchPlayersEmptyInputs(t *testing.T) {
	assert.Empty(t, MatchPlayers(nil, nil, time.Now()))
	assert.Empty(t, MatchPlayers([]EnrichedDetection{enrichedWithColor("d1", "blue", 0.9)}, nil, time.Now()))
}

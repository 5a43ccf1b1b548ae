package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu     sync.Mutex
	frame  image.Image
	err    error
	closed bool
}

func (s *stubSource) Next(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.frame, nil
}

func (s *stubSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type stubSink struct {
	mu       sync.Mutex
	payloads []EventPayload
}

func (s *stubSink) LogDetectionEvent(ctx context.Context, payload EventPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func fixedDetector(detections []Detection) Detector {
	return func(ctx context.Context, img image.Image) ([]Detection, error) {
		return detections, nil
	}
}

func blueFrame() image.Image {
	return solidFrame(200, 300, color.RGBA{10, 10, 220, 255})
}

func blueRoster() []ExpectedPlayer {
	return []ExpectedPlayer{{
		PlayerID:    "p1",
		DisplayName: "Jordan",
		Clothing:    ClothingDescriptor{TopColor: "Blue", BottomColor: "Khaki"},
	}}
}

func testOptions(targets []string) Options {
	return Options{
		TargetColors: targets,
		FPS:          120,
		RoundID:      "round-1",
		HoleNumber:   3,
		CameraAngle:  "tee_box",
	}
}

func waitCycle(t *testing.T, ch <-chan []EnrichedDetection) []EnrichedDetection {
	t.Helper()
	select {
	case detections := <-ch:
		return detections
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a detection cycle")
		return nil
	}
}

func TestSessionEndToEnd(t *testing.T) {
	cycles := make(chan []EnrichedDetection, 100)
	matchCh := make(chan Match, 100)

	opts := testOptions([]string{"blue"})
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}
	opts.OnPlayerDetected = func(m Match) {
		select {
		case matchCh <- m:
		default:
		}
	}

	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	detections := waitCycle(t, cycles)
	require.Len(t, detections, 1)
	assert.Equal(t, ColorBlue, detections[0].ClothingColor)
	assert.True(t, detections[0].IsTargetColor)
	assert.Equal(t, 0.92, detections[0].Score)

	select {
	case m := <-matchCh:
		assert.Equal(t, "p1", m.PlayerID)
		assert.Equal(t, "Blue", m.MatchedColor)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a match")
	}

	assert.True(t, session.Running())
}

// matching is independent of the target-color flag
func TestSessionTargetColorDoesNotGateMatching(t *testing.T) {
	cycles := make(chan []EnrichedDetection, 100)

	opts := testOptions([]string{"red"})
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}

	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	detections := waitCycle(t, cycles)
	require.Len(t, detections, 1)
	assert.False(t, detections[0].IsTargetColor)

	snapshot := session.Snapshot()
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Matches, 1)
	assert.Equal(t, "p1", snapshot.Matches[0].PlayerID)
}

func TestSessionFiltersLowConfidence(t *testing.T) {
	cycles := make(chan []EnrichedDetection, 100)

	opts := testOptions([]string{"blue"})
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}

	session := NewSession(fixedDetector([]Detection{personDetection(0.4)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	detections := waitCycle(t, cycles)
	assert.Empty(t, detections)

	snapshot := session.Snapshot()
	require.NotNil(t, snapshot)
	assert.Empty(t, snapshot.Matches)
}

func TestSessionNoCallbacksAfterStop(t *testing.T) {
	var calls atomic.Int64

	opts := testOptions([]string{"blue"})
	opts.OnDetections = func([]EnrichedDetection) { calls.Add(1) }

	src := &stubSource{frame: blueFrame()}
	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), src, blueRoster()))

	assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	session.Stop()
	assert.False(t, session.Running())
	assert.True(t, src.isClosed())

	seen := calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, seen, calls.Load(), "callbacks must not fire after Stop returns")

	// Stop is idempotent
	session.Stop()
}

func TestSessionRecoversFromInferenceFailure(t *testing.T) {
	var attempts atomic.Int64
	detector := func(ctx context.Context, img image.Image) ([]Detection, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("inference blew up")
		}
		return []Detection{personDetection(0.92)}, nil
	}

	cycles := make(chan []EnrichedDetection, 100)
	opts := testOptions([]string{"blue"})
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}

	session := NewSession(detector, nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	detections := waitCycle(t, cycles)
	assert.Len(t, detections, 1, "loop keeps scheduling after failed cycles")
}

func TestSessionDeactivatesWhenSourceCloses(t *testing.T) {
	src := &stubSource{frame: blueFrame()}
	src.err = ErrSourceClosed

	session := NewSession(fixedDetector(nil), nil, testOptions(nil), zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), src, nil))

	assert.Eventually(t, func() bool { return !session.Running() }, 2*time.Second, 5*time.Millisecond)
}

func TestSessionForwardsMatchesToSink(t *testing.T) {
	sink := &stubSink{}

	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), sink,
		testOptions([]string{"blue"}), zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	assert.Eventually(t, func() bool { return sink.count() > 0 }, 2*time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	payload := sink.payloads[0]
	sink.mu.Unlock()

	assert.Equal(t, "round-1", payload.RoundID)
	assert.Equal(t, 3, payload.HoleNumber)
	assert.Equal(t, "tee_box", payload.CameraAngle)
	require.Len(t, payload.Detections, 1)
	assert.Equal(t, "p1", payload.Detections[0].PlayerID)
	assert.Equal(t, ColorBlue, payload.Detections[0].ClothingColor)
}

func TestSessionOverlay(t *testing.T) {
	cycles := make(chan []EnrichedDetection, 100)
	opts := testOptions([]string{"blue"})
	opts.ShowOverlay = true
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}

	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	waitCycle(t, cycles)
	snapshot := session.Snapshot()
	require.NotNil(t, snapshot)
	require.NotNil(t, snapshot.Overlay)
	assert.Equal(t, image.Rect(0, 0, 200, 300), snapshot.Overlay.Bounds())
}

func TestSessionExport(t *testing.T) {
	cycles := make(chan []EnrichedDetection, 100)
	opts := testOptions([]string{"blue"})
	opts.OnDetections = func(d []EnrichedDetection) {
		select {
		case cycles <- d:
		default:
		}
	}

	session := NewSession(fixedDetector([]Detection{personDetection(0.92)}), nil, opts, zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), &stubSource{frame: blueFrame()}, blueRoster()))
	defer session.Stop()

	waitCycle(t, cycles)

	doc, err := session.Export()
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"round_id": "round-1"`)
	assert.Contains(t, string(doc), `"clothing_color": "blue"`)
	assert.Contains(t, string(doc), `"match_count": 1`)
}

func TestSessionStartReplacesActiveSource(t *testing.T) {
	first := &stubSource{frame: blueFrame()}
	second := &stubSource{frame: blueFrame()}

	session := NewSession(fixedDetector(nil), nil, testOptions(nil), zerolog.Nop())
	require.NoError(t, session.Start(context.Background(), first, nil))
	require.NoError(t, session.Start(context.Background(), second, nil))
	defer session.Stop()

	assert.True(t, first.isClosed(), "previous frame source is released before the new one starts")
	assert.False(t, second.isClosed())
	assert.True(t, session.Running())
}

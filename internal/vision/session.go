package vision

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSourceClosed is the terminal error a FrameSource returns once its
// underlying stream has ended. The session treats it as deactivation.
var ErrSourceClosed = errors.New("frame source closed")

const defaultFPS = 15.0

// FrameSource exposes the current video frame as a decodable bitmap. The
// source is exclusively owned by the session that started with it.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// EventSink receives detection events from completed cycles. Calls are
// fire-and-forget: failures are logged and swallowed, never blocking the
// detection loop.
type EventSink interface {
	LogDetectionEvent(ctx context.Context, payload EventPayload) error
}

// Options configure one detection session.
type Options struct {
	TargetColors  []string
	ShowOverlay   bool
	FPS           float64
	DetectTimeout time.Duration // zero leaves the detector call unguarded

	RoundID     string
	HoleNumber  int
	CameraAngle string

	// invoked synchronously once per completed cycle with the full array,
	// possibly empty
	OnDetections func([]EnrichedDetection)
	// invoked synchronously once per match within a cycle
	OnPlayerDetected func(Match)
}

// CycleResult is the immutable snapshot of one completed cycle. A later
// cycle replaces it wholesale.
type CycleResult struct {
	Detections []EnrichedDetection `json:"detections"`
	Matches    []Match             `json:"matches"`
	Overlay    *image.RGBA         `json:"-"`
	CapturedAt time.Time           `json:"captured_at"`
}

// Session runs the detect -> enrich -> match -> render cycle on a ticker
// until stopped. It has two states, idle and running; per-cycle failures are
// recovered locally and never terminate the loop.
type Session struct {
	detect Detector
	sink   EventSink
	opts   Options
	log    zerolog.Logger

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	src      FrameSource
	roster   []ExpectedPlayer
	last     *CycleResult
	started  time.Time
	cycles   uint64
	failures uint64
}

func NewSession(detect Detector, sink EventSink, opts Options, log zerolog.Logger) *Session {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	return &Session{
		detect: detect,
		sink:   sink,
		opts:   opts,
		log:    log.With().Str("component", "vision_session").Logger(),
	}
}

// Running reports whether the session is in the running state.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Start transitions the session from idle to running. A session that is
// already running is stopped first so the previous frame source is released
// before the new one is acquired.
func (s *Session) Start(ctx context.Context, src FrameSource, roster []ExpectedPlayer) error {
	if s.detect == nil {
		return errors.New("session has no detector")
	}
	if src == nil {
		return errors.New("session needs a frame source")
	}
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.src = src
	s.roster = append([]ExpectedPlayer(nil), roster...)
	s.started = time.Now()
	s.cycles = 0
	s.failures = 0
	s.mu.Unlock()

	s.log.Info().
		Str("round_id", s.opts.RoundID).
		Int("hole_number", s.opts.HoleNumber).
		Str("camera_angle", s.opts.CameraAngle).
		Int("roster_size", len(roster)).
		Float64("fps", s.opts.FPS).
		Msg("detection session started")

	go s.run(runCtx)
	return nil
}

// Stop transitions the session to idle and waits for the loop to exit. An
// in-flight detector call is allowed to complete but its result is
// discarded; no callback fires after Stop returns. Stop is idempotent.
func (s *Session) Stop() {
	done := s.deactivate()
	if done != nil {
		<-done
	}
}

// deactivate flips the state to idle, cancels the loop and closes the frame
// source. It returns the loop's done channel, or nil if the session was
// already idle. Called from Stop and, on a terminal source error, from the
// loop itself, which must not wait on its own exit.
func (s *Session) deactivate() chan struct{} {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	src := s.src
	s.src = nil
	s.mu.Unlock()

	cancel()
	if src != nil {
		if err := src.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close frame source")
		}
	}
	s.log.Info().Str("round_id", s.opts.RoundID).Msg("detection session stopped")
	return done
}

func (s *Session) run(ctx context.Context) {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()
	defer close(done)

	interval := time.Duration(float64(time.Second) / s.opts.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// the next tick is not consumed until this cycle finishes,
			// so inference calls never overlap
			s.runCycle(ctx)
		}
	}
}

func (s *Session) runCycle(ctx context.Context) {
	s.mu.RLock()
	src := s.src
	roster := s.roster
	s.mu.RUnlock()
	if src == nil {
		return
	}

	frame, err := src.Next(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceClosed) {
			s.log.Info().Msg("frame source unavailable, deactivating")
			s.deactivate()
			return
		}
		if ctx.Err() == nil {
			s.log.Debug().Err(err).Msg("failed to read frame, skipping cycle")
		}
		return
	}

	detections, err := s.invokeDetector(ctx, frame)
	if err != nil {
		s.mu.Lock()
		s.failures++
		s.mu.Unlock()
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("inference failed, skipping cycle")
		}
		return
	}

	now := time.Now()
	enriched := Enrich(frame, PersonFilter(detections), s.opts.TargetColors, now)
	matches := MatchPlayers(enriched, roster, now)

	var overlay *image.RGBA
	if s.opts.ShowOverlay {
		overlay = RenderOverlay(frame, enriched)
	}

	// the session may have been deactivated while inference was in flight;
	// discard the result rather than mutate state or fire callbacks
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.last = &CycleResult{
		Detections: enriched,
		Matches:    matches,
		Overlay:    overlay,
		CapturedAt: now,
	}
	s.cycles++
	s.mu.Unlock()

	if s.opts.OnDetections != nil {
		s.opts.OnDetections(enriched)
	}
	if s.opts.OnPlayerDetected != nil {
		for _, m := range matches {
			s.opts.OnPlayerDetected(m)
		}
	}

	if len(matches) > 0 {
		s.log.Debug().
			Int("detections", len(enriched)).
			Int("matches", len(matches)).
			Msg("cycle completed with matches")
	}
	s.forward(enriched, matches, now)
}

func (s *Session) invokeDetector(ctx context.Context, frame image.Image) ([]Detection, error) {
	if s.opts.DetectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.DetectTimeout)
		defer cancel()
	}
	return s.detect(ctx, frame)
}

// forward hands matched detections to the event sink without blocking the
// loop.
func (s *Session) forward(enriched []EnrichedDetection, matches []Match, at time.Time) {
	if s.sink == nil || len(matches) == 0 {
		return
	}

	byIdentity := make(map[string]EnrichedDetection, len(enriched))
	for _, d := range enriched {
		byIdentity[d.Identity] = d
	}

	records := make([]DetectionRecord, 0, len(matches))
	for _, m := range matches {
		d := byIdentity[m.DetectionID]
		records = append(records, DetectionRecord{
			PlayerID:      m.PlayerID,
			Confidence:    m.Confidence,
			ClothingColor: d.ClothingColor,
			Box:           d.Box,
			Timestamp:     m.MatchedAt,
		})
	}

	payload := EventPayload{
		RoundID:     s.opts.RoundID,
		HoleNumber:  s.opts.HoleNumber,
		CameraAngle: s.opts.CameraAngle,
		Detections:  records,
		EventTime:   at,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sink.LogDetectionEvent(ctx, payload); err != nil {
			s.log.Warn().Err(err).Str("round_id", payload.RoundID).Msg("failed to forward detection event")
		}
	}()
}

// Snapshot returns the most recent completed cycle, or nil before the first
// one.
func (s *Session) Snapshot() *CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// SessionStats are derived counters included in exports.
type SessionStats struct {
	Cycles      uint64         `json:"cycles"`
	Failures    uint64         `json:"failures"`
	UptimeSec   float64        `json:"uptime_sec"`
	ColorCounts map[string]int `json:"color_counts"`
	TargetCount int            `json:"target_count"`
	MatchCount  int            `json:"match_count"`
}

type exportDocument struct {
	RoundID     string       `json:"round_id"`
	HoleNumber  int          `json:"hole_number"`
	CameraAngle string       `json:"camera_angle"`
	ExportedAt  time.Time    `json:"exported_at"`
	Snapshot    *CycleResult `json:"snapshot"`
	Stats       SessionStats `json:"stats"`
}

// Export serializes the current snapshot plus derived statistics to a JSON
// document suitable for download.
func (s *Session) Export() ([]byte, error) {
	s.mu.RLock()
	last := s.last
	stats := SessionStats{
		Cycles:      s.cycles,
		Failures:    s.failures,
		ColorCounts: map[string]int{},
	}
	if s.running {
		stats.UptimeSec = time.Since(s.started).Seconds()
	}
	s.mu.RUnlock()

	if last != nil {
		for _, d := range last.Detections {
			stats.ColorCounts[d.ClothingColor]++
			if d.IsTargetColor {
				stats.TargetCount++
			}
		}
		stats.MatchCount = len(last.Matches)
	}

	return json.MarshalIndent(exportDocument{
		RoundID:     s.opts.RoundID,
		HoleNumber:  s.opts.HoleNumber,
		CameraAngle: s.opts.CameraAngle,
		ExportedAt:  time.Now(),
		Snapshot:    last,
		Stats:       stats,
	}, "", "  ")
}

// Package session runs the motion pipeline for one operator session:
// start/stop lifecycle, a periodic capture tick with a re-entrancy guard,
// runtime smoothing changes, and hand-off to a Sink.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-wekbridge/internal/log"
	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// ErrNotTracking is returned when a tick or push arrives while stopped
var ErrNotTracking = errors.New("session: not tracking")

// BodySource returns one tick of body pose detections
type BodySource interface {
	DetectBody(ctx context.Context) (motion.BodyInput, error)
}

// FaceSource returns one tick of face detections
type FaceSource interface {
	DetectFaces(ctx context.Context) (motion.FaceInput, error)
}

// OrientationSource returns the latest device orientation in degrees.
// ok is false when no reading is available yet.
type OrientationSource interface {
	ReadOrientation(ctx context.Context) (o motion.Angles, ok bool, err error)
}

// Opener is implemented by sources that acquire a device on Start
type Opener interface {
	Open(ctx context.Context) error
}

// Sink delivers encoded frames (the Wekinator relay)
type Sink interface {
	Send(ctx context.Context, e motion.Encoded) error
}

// Result describes what a tick or push did
type Result int

const (
	ResultIdle    Result = iota // Not tracking
	ResultEmitted               // Frame sent
	ResultCleared               // No face: nothing sent, display cleared
	ResultSkipped               // Previous tick still running
	ResultAborted               // Acquisition or pipeline failure
	ResultDropped               // Sink failed; frame dropped
	ResultNoData                // Source had nothing yet
)

func (r Result) String() string {
	switch r {
	case ResultIdle:
		return "idle"
	case ResultEmitted:
		return "emitted"
	case ResultCleared:
		return "cleared"
	case ResultSkipped:
		return "skipped"
	case ResultAborted:
		return "aborted"
	case ResultDropped:
		return "dropped"
	case ResultNoData:
		return "no_data"
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Stats contains session counters
type Stats struct {
	Ticks   uint64 `json:"ticks"`
	Emitted uint64 `json:"emitted"`
	Cleared uint64 `json:"cleared"`
	Skipped uint64 `json:"skipped"`
	Aborted uint64 `json:"aborted"`
	Dropped uint64 `json:"dropped"`
}

// Session owns one smoothing pipeline and its tracking state.
// There are no process-wide singletons: every caller creates its own.
type Session struct {
	id     string
	config Config
	sink   Sink
	log    *slog.Logger

	mu       sync.Mutex // Protects pipeline, tracking, generation and source
	pipeline *motion.Pipeline
	tracking bool
	source   any

	// generation changes on Start, Stop and depth changes. A pass captured
	// under an older generation is discarded instead of smoothed.
	generation uint64

	// busy is the re-entrancy guard: at most one pipeline pass at a time
	busy atomic.Bool

	// Callbacks, set before Start
	OnFrame func(id string, e motion.Encoded)
	OnClear func(id string, m motion.Modality)

	ticks   atomic.Uint64
	emitted atomic.Uint64
	cleared atomic.Uint64
	skipped atomic.Uint64
	aborted atomic.Uint64
	dropped atomic.Uint64
}

// New creates a stopped session
func New(id string, cfg Config, sink Sink) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("session: sink is required")
	}
	return &Session{
		id:     id,
		config: cfg,
		sink:   sink,
		log:    log.With("component", "session", "session", id),
		pipeline: motion.NewPipeline(motion.PipelineConfig{
			Depth:      cfg.Depth,
			UnifyEmpty: cfg.UnifyEmpty,
		}),
	}, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// SetBodySource makes Run pull body detections from src
func (s *Session) SetBodySource(src BodySource) {
	s.setSource(src)
}

// SetFaceSource makes Run pull face detections from src
func (s *Session) SetFaceSource(src FaceSource) {
	s.setSource(src)
}

// SetOrientationSource makes Run pull orientation readings from src
func (s *Session) SetOrientationSource(src OrientationSource) {
	s.setSource(src)
}

func (s *Session) setSource(src any) {
	s.mu.Lock()
	s.source = src
	s.mu.Unlock()
}

// IsTracking reports whether the session is started
func (s *Session) IsTracking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracking
}

// Depth returns the current smoothing depth
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipeline.Depth()
}

// Start begins tracking: the source is opened and the smoothing window
// cleared. Starting an already started session does nothing.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracking {
		return nil
	}
	if o, ok := s.source.(Opener); ok {
		if err := o.Open(ctx); err != nil {
			return fmt.Errorf("open source: %w", err)
		}
	}
	s.pipeline.Reset()
	s.tracking = true
	s.generation++
	s.log.Info("tracking started", "depth", s.pipeline.Depth())
	return nil
}

// Stop ends tracking, clears the window and releases the source.
// The last frame sent is not retracted. Stopping a stopped session does
// nothing.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracking {
		return nil
	}
	s.tracking = false
	s.generation++
	s.pipeline.Reset()

	var err error
	if c, ok := s.source.(io.Closer); ok {
		err = c.Close()
	}
	s.log.Info("tracking stopped")
	return err
}

// SetSmoothing changes the smoothing depth; the window is cleared
func (s *Session) SetSmoothing(depth int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := depth != s.pipeline.Depth()
	if err := s.pipeline.SetDepth(depth); err != nil {
		return err
	}
	if changed {
		s.generation++
	}
	s.log.Info("smoothing changed", "depth", depth)
	return nil
}

// Run ticks on the configured interval until ctx is done or the session
// is stopped.
// Each tick runs in its own goroutine; a tick that fires while the previous
// one is still running is skipped.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !s.IsTracking() {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Tick(ctx); err != nil && !errors.Is(err, ErrNotTracking) {
					s.log.Warn("tick failed", "error", err)
				}
			}()
		}
	}
}

// Tick pulls one reading from the source and runs it through the pipeline
func (s *Session) Tick(ctx context.Context) (Result, error) {
	s.mu.Lock()
	src := s.source
	s.mu.Unlock()

	return s.guarded(func(gen uint64) (Result, error) {
		s.ticks.Add(1)

		switch src := src.(type) {
		case BodySource:
			in, err := src.DetectBody(ctx)
			if err != nil {
				return s.abort(fmt.Errorf("acquire body: %w", err))
			}
			return s.bodyPass(ctx, gen, in)

		case FaceSource:
			in, err := src.DetectFaces(ctx)
			if err != nil {
				return s.abort(fmt.Errorf("acquire face: %w", err))
			}
			return s.facePass(ctx, gen, in)

		case OrientationSource:
			o, ok, err := src.ReadOrientation(ctx)
			if err != nil {
				return s.abort(fmt.Errorf("acquire orientation: %w", err))
			}
			if !ok {
				return ResultNoData, nil
			}
			return s.orientationPass(ctx, gen, o)
		}
		return ResultNoData, nil
	})
}

// PushBody runs pushed body detections through the pipeline
func (s *Session) PushBody(ctx context.Context, in motion.BodyInput) (Result, error) {
	return s.guarded(func(gen uint64) (Result, error) {
		return s.bodyPass(ctx, gen, in)
	})
}

// PushFaces runs pushed face detections through the pipeline
func (s *Session) PushFaces(ctx context.Context, in motion.FaceInput) (Result, error) {
	return s.guarded(func(gen uint64) (Result, error) {
		return s.facePass(ctx, gen, in)
	})
}

// PushOrientation runs a pushed orientation reading (degrees)
func (s *Session) PushOrientation(ctx context.Context, o motion.Angles) (Result, error) {
	return s.guarded(func(gen uint64) (Result, error) {
		return s.orientationPass(ctx, gen, o)
	})
}

// PushFrame smooths and sends a frame that is already standardized and
// normalized
func (s *Session) PushFrame(ctx context.Context, f motion.Frame) (Result, error) {
	return s.guarded(func(gen uint64) (Result, error) {
		return s.emit(ctx, gen, f.Modality, func(p *motion.Pipeline) (motion.Encoded, bool, error) {
			enc, err := p.Frame(f)
			return enc, true, err
		})
	})
}

// guarded runs pass under the re-entrancy guard, handing it the
// generation the pass started in
func (s *Session) guarded(pass func(gen uint64) (Result, error)) (Result, error) {
	s.mu.Lock()
	tracking, gen := s.tracking, s.generation
	s.mu.Unlock()

	if !tracking {
		return ResultIdle, ErrNotTracking
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return ResultSkipped, nil
	}
	defer s.busy.Store(false)
	return pass(gen)
}

func (s *Session) bodyPass(ctx context.Context, gen uint64, in motion.BodyInput) (Result, error) {
	return s.emit(ctx, gen, motion.Body, func(p *motion.Pipeline) (motion.Encoded, bool, error) {
		enc, err := p.Body(in)
		return enc, true, err
	})
}

func (s *Session) facePass(ctx context.Context, gen uint64, in motion.FaceInput) (Result, error) {
	return s.emit(ctx, gen, motion.Face, func(p *motion.Pipeline) (motion.Encoded, bool, error) {
		return p.Face(in)
	})
}

func (s *Session) orientationPass(ctx context.Context, gen uint64, o motion.Angles) (Result, error) {
	return s.emit(ctx, gen, motion.Orientation, func(p *motion.Pipeline) (motion.Encoded, bool, error) {
		enc, err := p.Orientation(o)
		return enc, true, err
	})
}

// emit runs step on the pipeline and sends the result. A pass whose
// session was stopped, restarted or re-smoothed while it was capturing is
// dropped before it touches the window.
func (s *Session) emit(ctx context.Context, gen uint64, m motion.Modality, step func(*motion.Pipeline) (motion.Encoded, bool, error)) (Result, error) {
	s.mu.Lock()
	if !s.tracking || s.generation != gen {
		s.mu.Unlock()
		s.log.Debug("stale capture discarded", "modality", m)
		return ResultIdle, ErrNotTracking
	}
	enc, ok, err := step(s.pipeline)
	s.mu.Unlock()

	if err != nil {
		return s.abort(err)
	}
	if !ok {
		s.cleared.Add(1)
		if s.OnClear != nil {
			s.OnClear(s.id, m)
		}
		return ResultCleared, nil
	}

	if err := s.sink.Send(ctx, enc); err != nil {
		s.dropped.Add(1)
		s.log.Warn("frame dropped", "modality", enc.Modality, "error", err)
		return ResultDropped, err
	}

	s.emitted.Add(1)
	if s.OnFrame != nil {
		s.OnFrame(s.id, enc)
	}
	return ResultEmitted, nil
}

func (s *Session) abort(err error) (Result, error) {
	s.aborted.Add(1)
	s.log.Warn("tick aborted", "error", err)
	return ResultAborted, err
}

// GetStats returns session counters
func (s *Session) GetStats() Stats {
	return Stats{
		Ticks:   s.ticks.Load(),
		Emitted: s.emitted.Load(),
		Cleared: s.cleared.Load(),
		Skipped: s.skipped.Load(),
		Aborted: s.aborted.Load(),
		Dropped: s.dropped.Load(),
	}
}

package match

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/posematch/estimate"
	"go.viam.com/posematch/pose"
)

// Session drives the continuous frame loop: one estimation pass per
// refresh tick, each detected subject scored against the reference loaded
// at startup. A session is idle until Start and runs until Close or
// context cancellation; there is no way back to idle.
type Session struct {
	id        uuid.UUID
	cfg       Config
	source    VideoSource
	loader    ImageLoader
	extractor *Extractor
	scorer    Scorer
	display   Display
	status    Status
	clock     clock.Clock
	logger    golog.Logger

	// published exactly once by the reference goroutine, read-only after
	ref atomic.Pointer[ReferenceState]

	// sticky display value; only the loop goroutine touches these
	lastScore    int
	hasLastScore bool

	mu                      sync.Mutex
	started                 bool
	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewSession validates cfg and assembles a session around the given
// collaborators. The estimator is borrowed, not owned: closing it remains
// the caller's job.
func NewSession(
	cfg Config,
	source VideoSource,
	est estimate.Estimator,
	loader ImageLoader,
	display Display,
	status Status,
	logger golog.Logger,
) (*Session, error) {
	if err := cfg.Validate("session"); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if source == nil {
		return nil, errors.New("session needs a video source")
	}
	if display == nil {
		return nil, errors.New("session needs a display sink")
	}
	if status == nil {
		status = NewStatusLogger(logger)
	}
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	id := uuid.New()
	return &Session{
		id:        id,
		cfg:       cfg,
		source:    source,
		loader:    loader,
		extractor: NewExtractor(est, cfg.Estimation, pose.RightElbowTriple, logger),
		scorer: Scorer{
			ToleranceDeg:      cfg.ToleranceDeg,
			MinPoseConfidence: cfg.Estimation.MinPoseConfidence,
		},
		display:    display,
		status:     status,
		clock:      clock.New(),
		logger:     logger.Named(id.String()[:8]),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Reference returns the published reference state, reporting whether the
// one-shot load has completed yet.
func (s *Session) Reference() (ReferenceState, bool) {
	if ref := s.ref.Load(); ref != nil {
		return *ref, true
	}
	return ReferenceState{}, false
}

// Start transitions the session from idle to running: the one-shot
// reference load kicks off in the background while the frame loop begins
// consuming refresh ticks. The two flows overlap freely; they only meet at
// the single reference publish. Starting twice is an error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.started = true
	s.mu.Unlock()

	s.status.LoadingStarted()
	s.activeBackgroundWorkers.Add(2)
	goutils.ManagedGo(func() {
		s.loadReference(s.cancelCtx)
	}, s.activeBackgroundWorkers.Done)
	goutils.ManagedGo(func() {
		s.frameLoop(s.cancelCtx)
	}, s.activeBackgroundWorkers.Done)
	return nil
}

func (s *Session) loadReference(ctx context.Context) {
	state, err := LoadReference(
		ctx,
		s.cfg.ReferenceImage,
		s.loader,
		s.extractor.est,
		s.extractor.triple,
		s.cfg.ReferenceMinConfidence,
		s.logger,
	)
	if err != nil {
		// feature-level degradation: the loop keeps running, unscored
		s.logger.Errorw("reference load failed; scoring disabled", "error", err)
		state = ReferenceState{LoadedAt: time.Now()}
	}
	s.ref.Store(&state)
	s.status.LoadingFinished()
}

func (s *Session) frameLoop(ctx context.Context) {
	interval := time.Duration(float64(time.Second) / s.cfg.FrameRate)
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		// the next tick is only awaited once the previous one has fully
		// completed, so at most one estimation call is ever in flight
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.tick(ctx)
	}
}

func (s *Session) tick(ctx context.Context) {
	frame, release, err := s.source.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.status.SourceUnavailable(err)
		s.logger.Errorw("frame capture failed", "error", err)
		return
	}
	defer release()

	poses, lives, err := s.extractor.ExtractLive(ctx, frame)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Errorw("pose estimation failed", "error", err)
		return
	}

	res := FrameResult{Frame: frame}
	ref := s.ref.Load()
	for i, live := range lives {
		sub := SubjectScore{Pose: poses[i], Live: live}
		if ref != nil {
			if score, ok := s.scorer.Score(*ref, live); ok {
				sub.Score = score
				sub.Scored = true
				s.lastScore = score
				s.hasLastScore = true
			}
		}
		res.Subjects = append(res.Subjects, sub)
	}
	res.DisplayScore = s.lastScore
	res.HasDisplayScore = s.hasLastScore

	if err := s.display.Render(ctx, res); err != nil {
		s.logger.Errorw("render failed", "error", err)
	}
}

// Close stops the frame loop and waits for all background work to finish.
func (s *Session) Close(ctx context.Context) error {
	s.cancelFunc()
	s.activeBackgroundWorkers.Wait()
	return nil
}

package out

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"stridekit/internal/modules/session/domain"
	sessionout "stridekit/internal/modules/session/port/out"
	"stridekit/internal/platform/id"
)

const subscriptionBuffer = 64

type SimulatorOptions struct {
	// Second is the wall-clock length of one simulated second.
	Second         time.Duration
	CapSeconds     int
	StageDelay     time.Duration
	StepsPerSecond int
	// ForceOutcome pins the result: "empty", "partial", "full",
	// "recorder_error" or "analysis_error". Empty derives it from length.
	ForceOutcome   string
	IDs            id.Generator
	Logger         hclog.Logger
}

// Simulator is an in-process stand-in for the motion SDK. It replays its
// current recorder state to new subscribers, finishes recordings when the
// requested duration (or the cap) elapses and walks the analysis stages
// before publishing a measurement.
type Simulator struct {
	opts SimulatorOptions

	mu           sync.Mutex
	state        domain.RecorderStatus
	subs         map[*simSubscription]struct{}
	active       *simRecording
	recorded     map[string]recordedSession
	measurements map[string]domain.MeasurementResult
}

type simRecording struct {
	sessionID string
	startedAt time.Time
	timer     *time.Timer
}

type recordedSession struct {
	seconds int
}

func NewSimulator(opts SimulatorOptions) *Simulator {
	if opts.Second <= 0 {
		opts.Second = time.Second
	}
	if opts.CapSeconds <= 0 {
		opts.CapSeconds = 360
	}
	if opts.StepsPerSecond <= 0 {
		opts.StepsPerSecond = 2
	}
	if opts.IDs == nil {
		opts.IDs = id.UUID{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	opts.Logger = opts.Logger.Named("simulator")
	return &Simulator{
		opts:         opts,
		state:        domain.RecorderIdleStatus(),
		subs:         make(map[*simSubscription]struct{}),
		recorded:     make(map[string]recordedSession),
		measurements: make(map[string]domain.MeasurementResult),
	}
}

var _ sessionout.Recorder = (*Simulator)(nil)

func (s *Simulator) Subscribe(ctx context.Context) (sessionout.Subscription, error) {
	sub := &simSubscription{
		recorder: make(chan domain.RecorderStatus, subscriptionBuffer),
		analysis: make(chan domain.AnalysisStatus, subscriptionBuffer),
		done:     make(chan struct{}),
	}
	sub.onClose = func() {
		s.mu.Lock()
		delete(s.subs, sub)
		s.mu.Unlock()
	}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	sub.recorder <- s.state
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

func (s *Simulator) StartRecording(_ context.Context, req domain.StartRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return fmt.Errorf("recorder busy with session %s", s.active.sessionID)
	}
	seconds := req.RequestedSeconds
	if seconds <= 0 || seconds > s.opts.CapSeconds {
		seconds = s.opts.CapSeconds
	}
	sessionID := s.opts.IDs.New()
	rec := &simRecording{sessionID: sessionID, startedAt: time.Now()}
	s.active = rec
	s.setRecorderState(domain.RecordingStatus(sessionID))
	s.opts.Logger.Debug("recording", "session_id", sessionID, "activity", req.ActivityType, "seconds", seconds)

	if s.opts.ForceOutcome == "recorder_error" {
		rec.timer = time.AfterFunc(s.opts.Second, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.active != rec {
				return
			}
			s.active = nil
			s.setRecorderState(domain.RecorderFailedStatus("sensor_unavailable"))
		})
		return nil
	}
	rec.timer = time.AfterFunc(time.Duration(seconds)*s.opts.Second, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.active != rec {
			return
		}
		s.finishLocked()
	})
	return nil
}

func (s *Simulator) StopRecording(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return fmt.Errorf("recorder is not recording")
	}
	s.active.timer.Stop()
	s.finishLocked()
	return nil
}

func (s *Simulator) ResetRecorder(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.timer.Stop()
		s.active = nil
	}
	s.setRecorderState(domain.RecorderIdleStatus())
	return nil
}

func (s *Simulator) RequestAnalysis(_ context.Context, sessionID string) error {
	s.mu.Lock()
	rec, ok := s.recorded[sessionID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session %s", sessionID)
	}
	go s.analyze(sessionID, rec)
	return nil
}

func (s *Simulator) FetchMeasurement(_ context.Context, measurementID string) (*domain.MeasurementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.measurements[measurementID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *Simulator) analyze(sessionID string, rec recordedSession) {
	for _, stage := range []domain.AnalysisStage{domain.StageUploading, domain.StageProcessing, domain.StagePreparingResult} {
		time.Sleep(s.opts.StageDelay)
		s.broadcastAnalysis(domain.InProgressStatus(stage))
	}
	time.Sleep(s.opts.StageDelay)
	if s.opts.ForceOutcome == "analysis_error" {
		s.broadcastAnalysis(domain.AnalysisFailedStatus("server_unavailable"))
		return
	}
	m := s.measure(rec.seconds)
	s.mu.Lock()
	s.measurements[m.MeasurementID] = m
	s.mu.Unlock()
	s.opts.Logger.Debug("analysis complete", "session_id", sessionID, "measurement_id", m.MeasurementID, "completeness", m.Completeness.String())
	s.broadcastAnalysis(domain.CompletedStatus(m.MeasurementID))
}

func (s *Simulator) measure(seconds int) domain.MeasurementResult {
	completeness := domain.CompletenessFull
	switch {
	case seconds < 10:
		completeness = domain.CompletenessEmpty
	case seconds < 30:
		completeness = domain.CompletenessPartial
	}
	switch s.opts.ForceOutcome {
	case "empty":
		completeness = domain.CompletenessEmpty
	case "partial":
		completeness = domain.CompletenessPartial
	case "full":
		completeness = domain.CompletenessFull
	}

	m := domain.MeasurementResult{MeasurementID: s.opts.IDs.New(), Completeness: completeness}
	if completeness == domain.CompletenessEmpty {
		m.Error = "not enough walking detected"
		return m
	}
	steps := seconds * s.opts.StepsPerSecond
	cadence := float64(s.opts.StepsPerSecond * 60)
	m.StepCount = &steps
	m.Parameters = map[string]float64{
		domain.ParamWalkingCadence: cadence,
		"walking_velocity":         round(0.6+cadence/200, 2),
	}
	if completeness == domain.CompletenessFull {
		m.Parameters[domain.ParamWalkScore] = round(math.Min(100, 50+float64(seconds)/6), 1)
		m.Parameters["walking_double_support"] = 24.5
		m.Parameters["walking_stride_length"] = round(120*m.Parameters["walking_velocity"]/cadence, 2)
	}
	return m
}

func (s *Simulator) finishLocked() {
	rec := s.active
	s.active = nil
	seconds := int(time.Since(rec.startedAt).Round(s.opts.Second) / s.opts.Second)
	s.recorded[rec.sessionID] = recordedSession{seconds: seconds}
	s.setRecorderState(domain.FinishedStatus(rec.sessionID))
}

func (s *Simulator) setRecorderState(status domain.RecorderStatus) {
	s.state = status
	for sub := range s.subs {
		select {
		case sub.recorder <- status:
		default:
			s.opts.Logger.Warn("subscriber buffer full, dropping recorder status", "status", status.String())
		}
	}
}

func (s *Simulator) broadcastAnalysis(status domain.AnalysisStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		select {
		case sub.analysis <- status:
		default:
			s.opts.Logger.Warn("subscriber buffer full, dropping analysis status", "status", status.String())
		}
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

type simSubscription struct {
	recorder chan domain.RecorderStatus
	analysis chan domain.AnalysisStatus
	done     chan struct{}
	once     sync.Once
	onClose  func()
}

func (s *simSubscription) RecorderStatus() <-chan domain.RecorderStatus { return s.recorder }
func (s *simSubscription) AnalysisStatus() <-chan domain.AnalysisStatus { return s.analysis }

func (s *simSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.onClose()
	})
}

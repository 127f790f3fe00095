package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"stridekit/internal/modules/session/domain"
	sessionout "stridekit/internal/modules/session/port/out"
	"stridekit/internal/platform/clock"
)

const (
	defaultTick       = time.Second
	defaultQueueSize  = 64
	observerBufferLen = 64
)

type Options struct {
	// AutoAnalyze requests analysis as soon as the recorder reports Finished.
	// When false, the caller issues Analyze explicitly.
	AutoAnalyze bool
	Clock       clock.Clock
	Logger      hclog.Logger
	TickEvery   time.Duration
	QueueSize   int
}

// Coordinator sequences one recording and its analysis at a time. Commands
// and recorder notifications are queued and applied by the single goroutine
// running Run, which owns every field of loopState.
type Coordinator struct {
	recorder  sessionout.Recorder
	clock     clock.Clock
	logger    hclog.Logger
	auto      bool
	tickEvery time.Duration

	events  chan event
	done    chan struct{}
	running atomic.Bool

	st loopState

	// recordingEpoch is the epoch whose timer may still tick, 0 when none.
	recordingEpoch atomic.Uint64
	current        atomic.Pointer[domain.Snapshot]

	mu        sync.RWMutex
	observers map[chan domain.Snapshot]struct{}
}

type loopState struct {
	phase   domain.Phase
	epoch   uint64
	seq     uint64
	session domain.Session

	sessionCtx  context.Context
	subCancel   context.CancelFunc
	sub         sessionout.Subscription
	timerCancel context.CancelFunc

	recorderSeen      bool
	finished          bool
	analysisRequested bool
	fetchStarted      bool

	loading    bool
	progress   string
	resultText string
	lastError  error
	result     *domain.MeasurementResult
	lastRun    domain.Session
}

func NewCoordinator(recorder sessionout.Recorder, opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.TickEvery <= 0 {
		opts.TickEvery = defaultTick
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	c := &Coordinator{
		recorder:  recorder,
		clock:     opts.Clock,
		logger:    opts.Logger.Named("coordinator"),
		auto:      opts.AutoAnalyze,
		tickEvery: opts.TickEvery,
		events:    make(chan event, opts.QueueSize),
		done:      make(chan struct{}),
		observers: make(map[chan domain.Snapshot]struct{}),
	}
	initial := c.snapshot()
	c.current.Store(&initial)
	return c
}

// Run consumes the event queue until ctx is cancelled. Live subscriptions and
// timers are torn down before it returns.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("coordinator is already running")
	}
	defer close(c.done)
	c.logger.Debug("event loop started", "auto_analyze", c.auto)
	for {
		select {
		case <-ctx.Done():
			if c.st.phase != domain.PhaseIdle {
				c.closeSession(context.Background())
				c.publish()
			}
			c.logger.Debug("event loop stopped")
			return nil
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Coordinator) Start(ctx context.Context, req domain.StartRequest) error {
	return c.do(ctx, command{kind: cmdStart, req: req})
}

func (c *Coordinator) Stop(ctx context.Context) error {
	return c.do(ctx, command{kind: cmdStop})
}

func (c *Coordinator) Analyze(ctx context.Context) error {
	return c.do(ctx, command{kind: cmdAnalyze})
}

// Reset forces the coordinator back to Idle from any state. By the time it
// returns the subscription of the abandoned session is closed.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.do(ctx, command{kind: cmdReset})
}

func (c *Coordinator) Snapshot() domain.Snapshot {
	return *c.current.Load()
}

// Subscribe returns a channel that receives the current snapshot and then one
// snapshot per transition. Slow observers miss intermediate snapshots.
func (c *Coordinator) Subscribe() chan domain.Snapshot {
	ch := make(chan domain.Snapshot, observerBufferLen)
	c.mu.Lock()
	c.observers[ch] = struct{}{}
	ch <- *c.current.Load()
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes an observer and closes its channel.
func (c *Coordinator) Unsubscribe(ch chan domain.Snapshot) {
	c.mu.Lock()
	if _, ok := c.observers[ch]; ok {
		delete(c.observers, ch)
		close(ch)
	}
	c.mu.Unlock()
}

func (c *Coordinator) do(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case c.events <- cmd:
	case <-c.done:
		return domain.ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-c.done:
		return domain.ErrCoordinatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post enqueues an internal event; it gives up once ctx is cancelled so
// goroutines of an abandoned session never block on the queue.
func (c *Coordinator) post(ctx context.Context, ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

func (c *Coordinator) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case command:
		err := c.handleCommand(ctx, ev)
		ev.reply <- err
	case recorderEvent:
		if c.stale(ev.epoch) {
			c.logger.Trace("dropping stale recorder status", "status", ev.status.String(), "epoch", ev.epoch)
			return
		}
		c.onRecorderStatus(ctx, ev.status)
	case analysisEvent:
		if c.stale(ev.epoch) {
			c.logger.Trace("dropping stale analysis status", "status", ev.status.String(), "epoch", ev.epoch)
			return
		}
		c.onAnalysisStatus(ctx, ev.status)
	case tickEvent:
		if c.stale(ev.epoch) || c.st.phase != domain.PhaseRecording {
			return
		}
		c.st.session.ElapsedSeconds++
		c.publish()
	case fetchedEvent:
		if c.stale(ev.epoch) {
			return
		}
		c.onMeasurementFetched(ctx, ev)
	}
}

func (c *Coordinator) stale(epoch uint64) bool {
	return c.st.phase == domain.PhaseIdle || epoch != c.st.epoch
}

func (c *Coordinator) handleCommand(ctx context.Context, cmd command) error {
	switch cmd.kind {
	case cmdStart:
		return c.start(ctx, cmd.req)
	case cmdStop:
		return c.stop(ctx)
	case cmdAnalyze:
		return c.analyze(ctx)
	case cmdReset:
		c.reset(ctx)
		return nil
	default:
		return fmt.Errorf("unknown command %d", cmd.kind)
	}
}

func (c *Coordinator) start(ctx context.Context, req domain.StartRequest) error {
	if c.st.phase != domain.PhaseIdle {
		return domain.ErrAlreadyActive
	}
	if err := req.Validate(); err != nil {
		return err
	}

	c.st.epoch++
	epoch := c.st.epoch
	subCtx, cancel := context.WithCancel(context.Background())
	sub, err := c.recorder.Subscribe(subCtx)
	if err != nil {
		cancel()
		c.st.lastError = fmt.Errorf("subscribe to recorder: %w", err)
		c.st.resultText = domain.FailureText(c.st.lastError)
		c.publish()
		return c.st.lastError
	}
	c.st.sessionCtx = subCtx
	c.st.sub = sub
	c.st.subCancel = cancel
	go c.pump(subCtx, epoch, sub)

	if err := c.recorder.StartRecording(ctx, req); err != nil {
		c.closeSession(ctx)
		c.st.lastError = &domain.RecorderFailure{Kind: err.Error()}
		c.st.resultText = domain.FailureText(c.st.lastError)
		c.publish()
		c.logger.Warn("recorder refused to start", "error", err)
		return fmt.Errorf("start recording: %w", err)
	}

	c.st.phase = domain.PhaseRecording
	c.st.session = domain.Session{
		ActivityType:     req.ActivityType,
		RequestedSeconds: req.RequestedSeconds,
		StartedAt:        c.clock.Now(),
		UserMetadata:     req.UserMetadata,
		CustomMetadata:   req.CustomMetadata,
	}
	c.st.resultText = ""
	c.st.lastError = nil
	c.st.result = nil
	c.startTimer(subCtx, epoch)
	c.logger.Debug("recording started", "activity", req.ActivityType, "duration_seconds", req.RequestedSeconds, "epoch", epoch)
	c.publish()
	return nil
}

func (c *Coordinator) stop(ctx context.Context) error {
	if c.st.phase != domain.PhaseRecording {
		return domain.ErrNotRecording
	}
	if err := c.recorder.StopRecording(ctx); err != nil {
		c.fail(ctx, &domain.RecorderFailure{Kind: err.Error()})
		return fmt.Errorf("stop recording: %w", err)
	}
	c.stopTimer()
	c.st.phase = domain.PhaseAwaitingAnalysis
	c.st.loading = true
	c.st.resultText = domain.LoadingText()
	c.logger.Debug("recording stopped by user", "session_id", c.st.session.ID)
	c.publish()
	return nil
}

func (c *Coordinator) analyze(ctx context.Context) error {
	if c.st.phase != domain.PhaseAwaitingAnalysis || !c.st.finished {
		return domain.ErrNotAwaitingAnalysis
	}
	if err := c.requestAnalysis(ctx); err != nil {
		return err
	}
	c.publish()
	return nil
}

func (c *Coordinator) reset(ctx context.Context) {
	if c.st.phase != domain.PhaseIdle {
		c.logger.Debug("session reset", "session_id", c.st.session.ID, "phase", c.st.phase.Label())
		c.closeSession(ctx)
	}
	c.st.resultText = ""
	c.st.lastError = nil
	c.st.result = nil
	c.publish()
}

func (c *Coordinator) onRecorderStatus(ctx context.Context, status domain.RecorderStatus) {
	switch status.State {
	case domain.RecorderRecording:
		c.st.recorderSeen = true
		if c.st.session.ID != status.SessionID {
			c.st.session.ID = status.SessionID
			c.publish()
		}
	case domain.RecorderFinished:
		c.st.recorderSeen = true
		if c.st.finished {
			c.logger.Trace("duplicate finished status", "session_id", status.SessionID)
			return
		}
		if c.st.session.ID != "" && status.SessionID != "" && status.SessionID != c.st.session.ID {
			c.logger.Warn("finished status for a foreign session", "expected", c.st.session.ID, "got", status.SessionID)
			return
		}
		if c.st.session.ID == "" {
			c.st.session.ID = status.SessionID
		}
		c.st.finished = true
		c.stopTimer()
		c.st.phase = domain.PhaseAwaitingAnalysis
		c.logger.Debug("recording finished", "session_id", c.st.session.ID, "elapsed", c.st.session.ElapsedSeconds)
		if c.auto {
			if err := c.requestAnalysis(ctx); err != nil {
				return
			}
		} else {
			c.st.loading = false
			c.st.progress = "Ready to analyze"
		}
		c.publish()
	case domain.RecorderFailed:
		c.fail(ctx, &domain.RecorderFailure{Kind: status.ErrorKind})
	case domain.RecorderIdle:
		// A freshly subscribed recorder replays Idle before the session
		// starts; only an Idle after the recorder picked up the session
		// means it was reset underneath us.
		if !c.st.recorderSeen {
			return
		}
		c.fail(ctx, domain.ErrOutOfBandReset)
	}
}

func (c *Coordinator) requestAnalysis(ctx context.Context) error {
	if c.st.analysisRequested {
		return domain.ErrAnalysisRequested
	}
	c.st.analysisRequested = true
	c.st.loading = true
	c.st.resultText = domain.LoadingText()
	if err := c.recorder.RequestAnalysis(ctx, c.st.session.ID); err != nil {
		c.fail(ctx, &domain.AnalysisFailure{Kind: "request rejected", Err: err})
		return err
	}
	c.logger.Debug("analysis requested", "session_id", c.st.session.ID)
	return nil
}

func (c *Coordinator) onAnalysisStatus(ctx context.Context, status domain.AnalysisStatus) {
	if c.st.phase != domain.PhaseAwaitingAnalysis || !c.st.analysisRequested {
		c.logger.Trace("analysis status before request", "status", status.String())
		return
	}
	switch status.State {
	case domain.AnalysisIdle:
	case domain.AnalysisInProgress:
		c.st.loading = true
		c.st.progress = status.Stage.Label()
		c.publish()
	case domain.AnalysisCompleted:
		if c.st.fetchStarted {
			c.logger.Trace("duplicate completed status", "measurement_id", status.MeasurementID)
			return
		}
		c.st.fetchStarted = true
		c.st.progress = "Fetching result"
		go c.fetch(c.st.sessionCtx, c.st.epoch, status.MeasurementID)
		c.publish()
	case domain.AnalysisFailed:
		c.fail(ctx, &domain.AnalysisFailure{Kind: status.ErrorKind})
	}
}

func (c *Coordinator) fetch(ctx context.Context, epoch uint64, measurementID string) {
	result, err := c.recorder.FetchMeasurement(ctx, measurementID)
	c.post(ctx, fetchedEvent{epoch: epoch, measurementID: measurementID, result: result, err: err})
}

func (c *Coordinator) onMeasurementFetched(ctx context.Context, ev fetchedEvent) {
	if ev.err != nil {
		c.fail(ctx, &domain.AnalysisFailure{Kind: "fetch measurement", Err: ev.err})
		return
	}
	if ev.result == nil {
		c.fail(ctx, &domain.AnalysisFailure{Kind: domain.ErrMeasurementUnavailable.Error(), Err: domain.ErrMeasurementUnavailable})
		return
	}
	result := *ev.result
	if result.MeasurementID == "" {
		result.MeasurementID = ev.measurementID
	}
	outcome := domain.MapResult(result)
	c.closeSession(ctx)
	c.st.result = &result
	c.st.resultText = outcome.Text
	c.st.lastError = outcome.Err
	if outcome.Err != nil {
		c.logger.Warn("analysis produced no parameters", "measurement_id", result.MeasurementID, "error", result.Error)
	} else {
		c.logger.Info("measurement available", "measurement_id", result.MeasurementID, "completeness", result.Completeness.String())
	}
	c.publish()
}

// fail ends the current session and surfaces err.
func (c *Coordinator) fail(ctx context.Context, err error) {
	c.logger.Warn("session failed", "session_id", c.st.session.ID, "phase", c.st.phase.Label(), "error", err)
	c.closeSession(ctx)
	c.st.lastError = err
	c.st.resultText = domain.FailureText(err)
	c.publish()
}

// closeSession returns to Idle and releases everything the session owned.
// Bumping the epoch turns every notification still in flight into a no-op.
func (c *Coordinator) closeSession(ctx context.Context) {
	c.stopTimer()
	if c.st.subCancel != nil {
		c.st.subCancel()
		c.st.subCancel = nil
	}
	if c.st.sub != nil {
		c.st.sub.Close()
		c.st.sub = nil
	}
	c.st.sessionCtx = nil
	if c.st.phase != domain.PhaseIdle {
		if err := c.recorder.ResetRecorder(ctx); err != nil {
			c.logger.Warn("reset recorder", "error", err)
		}
	}
	c.st.lastRun = c.st.session
	c.st.epoch++
	c.st.phase = domain.PhaseIdle
	c.st.session = domain.Session{}
	c.st.recorderSeen = false
	c.st.finished = false
	c.st.analysisRequested = false
	c.st.fetchStarted = false
	c.st.loading = false
	c.st.progress = ""
}

func (c *Coordinator) publish() {
	snap := c.snapshot()
	c.current.Store(&snap)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.observers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Coordinator) snapshot() domain.Snapshot {
	c.st.seq++
	snap := domain.Snapshot{
		Seq:            c.st.seq,
		Phase:          c.st.phase,
		SessionID:      c.st.session.ID,
		ActivityType:   c.st.session.ActivityType,
		StartedAt:      c.st.session.StartedAt,
		ElapsedSeconds: c.st.session.ElapsedSeconds,
		IsLoading:      c.st.loading,
		ProgressLabel:  c.st.progress,
		ResultText:     c.st.resultText,
		LastError:      c.st.lastError,
		AutoAnalyze:    c.auto,
		AnalysisAsked:  c.st.analysisRequested,
	}
	if c.st.result != nil {
		result := *c.st.result
		snap.Result = &result
		snap.Completed = c.st.lastRun
	}
	return snap
}

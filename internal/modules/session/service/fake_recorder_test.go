package service

import (
	"context"
	"sync"

	"stridekit/internal/modules/session/domain"
	sessionout "stridekit/internal/modules/session/port/out"
)

type fakeRecorder struct {
	mu sync.Mutex

	startErr   error
	stopErr    error
	analyzeErr error
	fetchErr   error
	result     *domain.MeasurementResult

	starts   int
	stops    int
	resets   int
	fetches  int
	analyzed []string
	requests []domain.StartRequest
	subs     []*fakeSubscription
}

var _ sessionout.Recorder = (*fakeRecorder)(nil)

func (f *fakeRecorder) StartRecording(_ context.Context, req domain.StartRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.requests = append(f.requests, req)
	return f.startErr
}

func (f *fakeRecorder) StopRecording(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.stopErr
}

func (f *fakeRecorder) ResetRecorder(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeRecorder) RequestAnalysis(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, sessionID)
	return f.analyzeErr
}

func (f *fakeRecorder) FetchMeasurement(context.Context, string) (*domain.MeasurementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.result == nil {
		return nil, nil
	}
	result := *f.result
	return &result, nil
}

func (f *fakeRecorder) Subscribe(context.Context) (sessionout.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSubscription{
		recorder: make(chan domain.RecorderStatus),
		analysis: make(chan domain.AnalysisStatus),
	}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeRecorder) counts() (starts, stops, resets, fetches, analyses int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops, f.resets, f.fetches, len(f.analyzed)
}

func (f *fakeRecorder) lastSub() *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

type fakeSubscription struct {
	recorder chan domain.RecorderStatus
	analysis chan domain.AnalysisStatus

	mu     sync.Mutex
	closed bool
}

func (s *fakeSubscription) RecorderStatus() <-chan domain.RecorderStatus { return s.recorder }
func (s *fakeSubscription) AnalysisStatus() <-chan domain.AnalysisStatus { return s.analysis }

func (s *fakeSubscription) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

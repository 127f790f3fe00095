package service

import (
	"context"

	sessionout "stridekit/internal/modules/session/port/out"
)

// pump forwards one subscription into the event queue, tagging every status
// with the session epoch.
func (c *Coordinator) pump(ctx context.Context, epoch uint64, sub sessionout.Subscription) {
	recorderCh := sub.RecorderStatus()
	analysisCh := sub.AnalysisStatus()
	for recorderCh != nil || analysisCh != nil {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-recorderCh:
			if !ok {
				recorderCh = nil
				continue
			}
			if !c.post(ctx, recorderEvent{epoch: epoch, status: status}) {
				return
			}
		case status, ok := <-analysisCh:
			if !ok {
				analysisCh = nil
				continue
			}
			if !c.post(ctx, analysisEvent{epoch: epoch, status: status}) {
				return
			}
		}
	}
}

// startTimer runs the elapsed-seconds ticker of one recording. The goroutine
// exits when its context is cancelled or when it sees that the recording it
// belongs to is no longer the live one.
func (c *Coordinator) startTimer(parent context.Context, epoch uint64) {
	ctx, cancel := context.WithCancel(parent)
	c.st.timerCancel = cancel
	c.recordingEpoch.Store(epoch)
	ticker := c.clock.NewTicker(c.tickEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if c.recordingEpoch.Load() != epoch {
					return
				}
				if !c.post(ctx, tickEvent{epoch: epoch}) {
					return
				}
			}
		}
	}()
}

func (c *Coordinator) stopTimer() {
	c.recordingEpoch.Store(0)
	if c.st.timerCancel != nil {
		c.st.timerCancel()
		c.st.timerCancel = nil
	}
}

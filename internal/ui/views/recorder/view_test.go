package recorder_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	sessiondto "stridekit/internal/modules/session/dto"
	"stridekit/internal/ui/views/recorder"
)

type fakeSession struct {
	started sessiondto.StartInput
}

func (f *fakeSession) Start(_ context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error) {
	f.started = input
	return sessiondto.SnapshotOutput{Seq: 2, Phase: "Recording", UIState: "Recording", ActivityType: input.ActivityType}, nil
}

func (f *fakeSession) Stop(context.Context) (sessiondto.SnapshotOutput, error) {
	return sessiondto.SnapshotOutput{Seq: 1, Phase: "Idle", UIState: "Idle"}, errors.New("no recording in progress")
}

func (f *fakeSession) Analyze(context.Context) (sessiondto.SnapshotOutput, error) {
	return sessiondto.SnapshotOutput{}, nil
}

func (f *fakeSession) Reset(context.Context) (sessiondto.SnapshotOutput, error) {
	return sessiondto.SnapshotOutput{}, nil
}

func (f *fakeSession) Current(context.Context) sessiondto.SnapshotOutput {
	return sessiondto.SnapshotOutput{}
}

func TestStartUsesDefaults(t *testing.T) {
	t.Parallel()
	port := &fakeSession{}
	m := recorder.New(port, sessiondto.StartInput{ActivityType: "walk", DurationSeconds: 60})

	msg := m.StartCmd(sessiondto.StartInput{})()
	done, ok := msg.(recorder.CommandDoneMsg)
	if !ok || done.Err != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	if port.started.ActivityType != "walk" || port.started.DurationSeconds != 60 {
		t.Fatalf("defaults not applied: %+v", port.started)
	}
	m, _ = m.Update(done)
	if !m.Active() || !strings.Contains(m.View(), "Recording") {
		t.Fatalf("view did not switch to recording:\n%s", m.View())
	}
}

func TestCommandErrorIsShown(t *testing.T) {
	t.Parallel()
	m := recorder.New(&fakeSession{}, sessiondto.StartInput{})
	m, _ = m.Update(m.StopCmd()())
	if !strings.Contains(m.View(), "stop: no recording in progress") {
		t.Fatalf("error not rendered:\n%s", m.View())
	}
}

func TestResultAndTimerRendered(t *testing.T) {
	t.Parallel()
	m := recorder.New(&fakeSession{}, sessiondto.StartInput{})
	m, _ = m.Update(recorder.SnapshotMsg{Snapshot: sessiondto.SnapshotOutput{
		Seq:            5,
		Phase:          "Idle",
		UIState:        "Idle",
		ElapsedSeconds: 75,
		ResultText:     "Full Analysis:\nsteps=42\nwalk score=7.5\n",
	}})
	view := m.View()
	if !strings.Contains(view, "01:15") || !strings.Contains(view, "walk score=7.5") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	m, _ = m.Update(recorder.SnapshotMsg{Snapshot: sessiondto.SnapshotOutput{Seq: 3, Phase: "Recording"}})
	if m.Active() {
		t.Fatalf("older snapshot replaced a newer one")
	}
}

func TestWaitForSnapshotStopsOnClose(t *testing.T) {
	t.Parallel()
	ch := make(chan sessiondto.SnapshotOutput, 1)
	ch <- sessiondto.SnapshotOutput{Seq: 9}
	if msg, ok := recorder.WaitForSnapshot(ch)().(recorder.SnapshotMsg); !ok || msg.Snapshot.Seq != 9 {
		t.Fatalf("expected snapshot message")
	}
	close(ch)
	if msg := recorder.WaitForSnapshot(ch)(); msg != nil {
		t.Fatalf("closed channel should yield nil, got %#v", msg)
	}
}

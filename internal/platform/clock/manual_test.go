package clock_test

import (
	"testing"
	"time"

	"stridekit/internal/platform/clock"
)

func TestManualTickerFiresOnAdvance(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	ticker := clk.NewTicker(time.Second)

	clk.Advance(500 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatalf("ticker fired early")
	default:
	}
	clk.Advance(500 * time.Millisecond)
	select {
	case at := <-ticker.C():
		if !at.Equal(start.Add(time.Second)) {
			t.Fatalf("tick at %v", at)
		}
	default:
		t.Fatalf("ticker did not fire")
	}

	ticker.Stop()
	if clk.Active() != 0 {
		t.Fatalf("stopped ticker still active")
	}
	clk.Advance(time.Second)
	select {
	case <-ticker.C():
		t.Fatalf("stopped ticker fired")
	default:
	}
}

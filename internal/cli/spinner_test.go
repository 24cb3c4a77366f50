package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func testSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, msg)
	s.w = &buf
	return s, &buf
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	s, buf := testSpinner(context.Background(), "extracting")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("rendering")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "extracting") || !strings.Contains(out, "rendering") {
		t.Errorf("output %q misses a message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line not cleared: %q", out)
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := testSpinner(ctx, "waiting")
	s.Start()
	cancel()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled with its context")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s, _ := testSpinner(ctx, "waiting")
	s.Start()
	time.Sleep(80 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after the timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := testSpinner(context.Background(), "x")
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	s, buf := testSpinner(context.Background(), "x")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() before Start() blocked")
	}
	if buf.Len() != 0 {
		t.Errorf("unstarted spinner wrote %q", buf.String())
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	out := captureStdout(t)

	s, _ := testSpinner(context.Background(), "x")
	s.Start()
	s.StopWithSuccess("done")
	s2, _ := testSpinner(context.Background(), "y")
	s2.StopWithError("failed")

	if !strings.Contains(out.String(), "done") || !strings.Contains(out.String(), "failed") {
		t.Errorf("stdout = %q", out.String())
	}
}

package session

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// recordingSink captures everything the session pumps plus resize calls.
type recordingSink struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	resizes [][2]int
}

func (r *recordingSink) Write(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Write(p)
	return nil
}

func (r *recordingSink) Resize(cols, rows int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resizes = append(r.resizes, [2]int{cols, rows})
	return nil
}

func (r *recordingSink) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

func waitFor(t *testing.T, s *Session) error {
	t.Helper()

	errc := make(chan error, 1)
	go func() { errc <- s.Wait() }()

	select {
	case err := <-errc:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("session did not end")
		return nil
	}
}

func TestSession_PumpsOutput(t *testing.T) {
	sink := &recordingSink{}
	s, err := Start(Config{
		Command: "sh",
		Args:    []string{"-c", "printf hello"},
		Cols:    80,
		Rows:    24,
	}, sink, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Close()

	if err := waitFor(t, s); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if got := sink.String(); !strings.Contains(got, "hello") {
		t.Errorf("sink saw %q, want it to contain hello", got)
	}
}

func TestSession_InputReachesChild(t *testing.T) {
	sink := &recordingSink{}
	s, err := Start(Config{
		Command: "sh",
		Args:    []string{"-c", `read x; printf 'got:%s' "$x"`},
		Cols:    80,
		Rows:    24,
	}, sink, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Write([]byte("ping\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := waitFor(t, s); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if got := sink.String(); !strings.Contains(got, "got:ping") {
		t.Errorf("sink saw %q, want it to contain got:ping", got)
	}
}

func TestSession_ResizePropagates(t *testing.T) {
	sink := &recordingSink{}
	s, err := Start(Config{
		Command: "cat",
		Cols:    80,
		Rows:    24,
	}, sink, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Resize(100, 30); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	_ = s.Close()
	_ = waitFor(t, s)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.resizes) != 1 || sink.resizes[0] != [2]int{100, 30} {
		t.Errorf("sink resizes = %v, want [[100 30]]", sink.resizes)
	}
}

func TestSession_CloseEndsLongRunningChild(t *testing.T) {
	sink := &recordingSink{}
	s, err := Start(Config{
		Command: "cat",
		Cols:    80,
		Rows:    24,
	}, sink, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The hangup-induced exit is not the child's fault; Wait reports nil.
	if err := waitFor(t, s); err != nil {
		t.Errorf("Wait after Close returned %v, want nil", err)
	}

	// Second close is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	select {
	case <-s.Done():
	default:
		t.Error("Done not closed after Wait returned")
	}
}

func TestSession_ChildFailureSurfacesOnWait(t *testing.T) {
	sink := &recordingSink{}
	s, err := Start(Config{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
		Cols:    80,
		Rows:    24,
	}, sink, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Close()

	if err := waitFor(t, s); err == nil {
		t.Error("Wait returned nil for a child that exited 3")
	}
}

func TestSession_StartFailure(t *testing.T) {
	_, err := Start(Config{
		Command: "/nonexistent/termwire-test-binary",
		Cols:    80,
		Rows:    24,
	}, &recordingSink{}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("Start of a nonexistent command succeeded")
	}
}

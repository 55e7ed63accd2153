package ssllabs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeSleeper counts waits instead of taking them.
type fakeSleeper struct {
	waits int32
}

func (f *fakeSleeper) sleep(ctx context.Context, _ time.Duration) error {
	atomic.AddInt32(&f.waits, 1)
	return ctx.Err()
}

func newTestClient(t *testing.T, apiURL string) (*Client, *fakeSleeper) {
	t.Helper()
	fs := &fakeSleeper{}
	c := NewClient(zap.NewNop().Sugar(), WithAPIURL(apiURL), WithSleeper(fs.sleep))
	return c, fs
}

// gradingStub replays a fixed sequence of poll statuses after the start call.
func gradingStub(t *testing.T, pollStatuses []string, readyBody string) *httptest.Server {
	t.Helper()
	var polls int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("host") == "" || q.Get("all") != "done" {
			t.Errorf("missing required query parameters: %v", q)
		}
		if q.Get("startNew") == "on" {
			fmt.Fprint(w, `{"status":"DNS"}`)
			return
		}
		n := atomic.AddInt32(&polls, 1)
		idx := int(n) - 1
		if idx >= len(pollStatuses) {
			idx = len(pollStatuses) - 1
		}
		status := pollStatuses[idx]
		if status == "READY" {
			fmt.Fprint(w, readyBody)
			return
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	}))
}

const readyResponse = `{
	"status": "READY",
	"endpoints": [{
		"ipAddress": "192.0.2.10",
		"grade": "A+",
		"details": {
			"protocols": [{"name": "TLS", "version": "1.2"}, {"name": "TLS", "version": "1.3"}],
			"cert": {"subject": "CN=example.com"},
			"key": {"alg": "EC", "size": 256},
			"forwardSecrecy": 4
		}
	}]
}`

func TestAssess_ReadyAfterPolling(t *testing.T) {
	server := gradingStub(t, []string{"IN_PROGRESS", "IN_PROGRESS", "READY"}, readyResponse)
	defer server.Close()

	c, fs := newTestClient(t, server.URL)
	endpoints, state := c.Assess(context.Background(), "example.com")

	if state != StateReady {
		t.Fatalf("expected READY, got %s", state)
	}
	if got := atomic.LoadInt32(&fs.waits); got != 3 {
		t.Errorf("expected 3 poll waits, got %d", got)
	}
	if len(endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(endpoints))
	}

	ep := endpoints[0]
	if ep.IPAddress != "192.0.2.10" || ep.Grade != "A+" {
		t.Errorf("unexpected endpoint: %+v", ep)
	}
	if ep.Details == nil {
		t.Fatal("expected endpoint details")
	}
	if len(ep.Details.Protocols) != 2 || ep.Details.Protocols[1] != "TLS 1.3" {
		t.Errorf("unexpected protocols: %v", ep.Details.Protocols)
	}
	if ep.Details.CertSubject != "CN=example.com" {
		t.Errorf("unexpected cert subject: %q", ep.Details.CertSubject)
	}
	if ep.Details.KeyAlgorithm != "EC" || ep.Details.KeySize != 256 {
		t.Errorf("unexpected key info: %+v", ep.Details)
	}
	if !ep.Details.ForwardSecrecy {
		t.Error("expected forward secrecy flag set")
	}
}

func TestAssess_ErrorIsTerminal(t *testing.T) {
	server := gradingStub(t, []string{"IN_PROGRESS", "ERROR"}, "")
	defer server.Close()

	c, fs := newTestClient(t, server.URL)
	endpoints, state := c.Assess(context.Background(), "example.com")

	if state != StateError {
		t.Fatalf("expected ERROR, got %s", state)
	}
	if endpoints != nil {
		t.Errorf("expected nil endpoints on ERROR, got %v", endpoints)
	}
	if got := atomic.LoadInt32(&fs.waits); got != 2 {
		t.Errorf("expected polling to stop at the ERROR status, got %d waits", got)
	}
}

func TestAssess_ExhaustsAttemptBudget(t *testing.T) {
	server := gradingStub(t, []string{"IN_PROGRESS"}, "")
	defer server.Close()

	c, fs := newTestClient(t, server.URL)
	endpoints, state := c.Assess(context.Background(), "example.com")

	if state != StateTimeout {
		t.Fatalf("expected TIMEOUT after attempt exhaustion, got %s", state)
	}
	if endpoints != nil {
		t.Errorf("expected nil endpoints on timeout, got %v", endpoints)
	}
	if got := atomic.LoadInt32(&fs.waits); int(got) != c.attempts {
		t.Errorf("expected exactly %d waits, got %d", c.attempts, got)
	}
}

func TestAssess_SubmitFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, fs := newTestClient(t, server.URL)
	endpoints, state := c.Assess(context.Background(), "example.com")

	if state != StateError {
		t.Fatalf("expected ERROR when submission fails, got %s", state)
	}
	if endpoints != nil {
		t.Errorf("expected nil endpoints, got %v", endpoints)
	}
	if got := atomic.LoadInt32(&fs.waits); got != 0 {
		t.Errorf("expected no polling after a failed submit, got %d waits", got)
	}
}

func TestAssess_CancellationEndsEarly(t *testing.T) {
	server := gradingStub(t, []string{"IN_PROGRESS"}, "")
	defer server.Close()

	// Cancel during the first poll wait: the submit succeeds, the loop ends
	// early without exceeding the attempt budget.
	ctx, cancel := context.WithCancel(context.Background())
	var waits int32
	c := NewClient(zap.NewNop().Sugar(), WithAPIURL(server.URL),
		WithSleeper(func(ctx context.Context, _ time.Duration) error {
			atomic.AddInt32(&waits, 1)
			cancel()
			return ctx.Err()
		}))

	_, state := c.Assess(ctx, "example.com")

	if state != StateTimeout {
		t.Fatalf("expected cancelled poll to report TIMEOUT, got %s", state)
	}
	if got := atomic.LoadInt32(&waits); got != 1 {
		t.Errorf("expected the loop to end on the first cancelled wait, got %d waits", got)
	}
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateReady, StateError, StateTimeout} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateStarting, StatePolling} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

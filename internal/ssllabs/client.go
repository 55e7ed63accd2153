// Package ssllabs polls an external TLS-grading service to a terminal state.
package ssllabs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sitegauge/sitegauge/internal/constants"
	"github.com/sitegauge/sitegauge/internal/report"
)

// DefaultAPIURL is the public grading service analyze endpoint.
const DefaultAPIURL = "https://api.ssllabs.com/api/v3/analyze"

// State is the assessment state machine position. Ready, Error and Timeout
// are terminal.
type State string

const (
	StateStarting State = "STARTING"
	StatePolling  State = "POLLING"
	StateReady    State = "READY"
	StateError    State = "ERROR"
	StateTimeout  State = "TIMEOUT"
)

// Terminal reports whether no further polling happens from s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateError || s == StateTimeout
}

// Client drives one assessment: submit the job, then poll at a fixed interval
// until a terminal status or the attempt budget runs out.
type Client struct {
	apiURL     string
	httpClient *http.Client
	attempts   int
	interval   time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	log        *zap.SugaredLogger
}

// Option adjusts a Client; used by tests to point at a fake API and clock.
type Option func(*Client)

// WithAPIURL overrides the grading service endpoint.
func WithAPIURL(u string) Option { return func(c *Client) { c.apiURL = u } }

// WithInterval overrides the fixed poll interval.
func WithInterval(d time.Duration) Option { return func(c *Client) { c.interval = d } }

// WithSleeper replaces the real delay, letting tests count waits instead of
// taking them.
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient returns a client with the fixed production budget of
// 30 attempts at 10 second intervals.
func NewClient(log *zap.SugaredLogger, opts ...Option) *Client {
	c := &Client{
		apiURL:     DefaultAPIURL,
		httpClient: &http.Client{Timeout: constants.ProbeTimeout},
		attempts:   constants.TLSPollAttempts,
		interval:   constants.TLSPollInterval,
		sleep:      sleepContext,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Assess runs the state machine for host. It returns the graded endpoints on
// READY and nil with the terminal state otherwise. Worst-case wall clock is
// attempts x interval; context cancellation ends the loop early but never
// extends it.
func (c *Client) Assess(ctx context.Context, host string) ([]report.SSLEndpoint, State) {
	if err := c.start(ctx, host); err != nil {
		c.log.Warnw("tls assessment submit failed", "host", host, "error", err)
		return nil, StateError
	}

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := c.sleep(ctx, c.interval); err != nil {
			c.log.Debugw("tls poll cancelled", "host", host, "attempt", attempt)
			return nil, StateTimeout
		}

		h, err := c.poll(ctx, host)
		if err != nil {
			// Soft failure: one bad poll stays in POLLING.
			c.log.Debugw("tls poll failed", "host", host, "attempt", attempt, "error", err)
			continue
		}

		switch h.Status {
		case statusReady:
			return convertEndpoints(h.Endpoints), StateReady
		case statusError:
			c.log.Warnw("tls assessment errored", "host", host)
			return nil, StateError
		}
	}

	c.log.Warnw("tls assessment exhausted poll budget", "host", host, "attempts", c.attempts)
	return nil, StateTimeout
}

func (c *Client) start(ctx context.Context, host string) error {
	q := url.Values{}
	q.Set("host", host)
	q.Set("startNew", "on")
	q.Set("all", "done")
	_, err := c.fetch(ctx, q)
	return err
}

func (c *Client) poll(ctx context.Context, host string) (*hostReport, error) {
	q := url.Values{}
	q.Set("host", host)
	q.Set("all", "done")
	return c.fetch(ctx, q)
}

func (c *Client) fetch(ctx context.Context, q url.Values) (*hostReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grading api returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		return nil, err
	}

	var h hostReport
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("decode grading response: %w", err)
	}
	return &h, nil
}

func convertEndpoints(eps []endpoint) []report.SSLEndpoint {
	out := make([]report.SSLEndpoint, 0, len(eps))
	for _, ep := range eps {
		conv := report.SSLEndpoint{
			IPAddress: ep.IPAddress,
			Grade:     ep.Grade,
		}
		if d := ep.Details; d != nil {
			details := &report.EndpointDetails{
				ForwardSecrecy: d.ForwardSecrecy >= 2,
			}
			for _, p := range d.Protocols {
				details.Protocols = append(details.Protocols, p.Name+" "+p.Version)
			}
			if d.Cert != nil {
				details.CertSubject = d.Cert.Subject
			}
			if d.Key != nil {
				details.KeyAlgorithm = d.Key.Alg
				details.KeySize = d.Key.Size
			}
			conv.Details = details
		}
		out = append(out, conv)
	}
	return out
}

// Package analyzer coordinates the content and security branches of one
// website analysis and assembles the unified report.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitegauge/sitegauge/internal/probe"
	"github.com/sitegauge/sitegauge/internal/report"
	"github.com/sitegauge/sitegauge/internal/seo"
	"github.com/sitegauge/sitegauge/internal/ssllabs"
)

// headerProber and friends let tests substitute the network probes.
type headerProber interface {
	Check(ctx context.Context, baseURL string) *report.SecurityHeaders
}

type surfaceScanner interface {
	Scan(ctx context.Context, baseURL string) *report.Vulnerabilities
}

type tlsGrader interface {
	Assess(ctx context.Context, host string) ([]report.SSLEndpoint, ssllabs.State)
}

// Options configures an Engine. The core takes everything explicitly; there
// is no config file or environment dependency down here.
type Options struct {
	// SkipTLS disables the external grading poll (it can take minutes).
	SkipTLS bool
	// Logger receives soft-failure diagnostics. Defaults to a nop logger.
	Logger *zap.SugaredLogger
}

// Engine runs one stateless analysis per Analyze call.
type Engine struct {
	fetcher Fetcher
	headers headerProber
	surface surfaceScanner
	tls     tlsGrader
	skipTLS bool
	log     *zap.SugaredLogger
}

// New wires an Engine with the production fetcher, probes and grading client.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		fetcher: NewHTTPFetcher(),
		headers: probe.NewHeaderProbe(log),
		surface: probe.NewSurfaceProbe(probe.DefaultCatalogue(), log),
		tls:     ssllabs.NewClient(log),
		skipTLS: opts.SkipTLS,
		log:     log,
	}
}

// Analyze inspects one URL and returns the unified report. The content branch
// and the security branch run concurrently; their result fields are disjoint.
// Only a failure to retrieve the primary page collapses the result to an
// error indicator, everything else degrades to absent or default fields.
func (e *Engine) Analyze(ctx context.Context, target string) *report.Analysis {
	u, err := Normalize(target)
	if err != nil {
		e.log.Warnw("target rejected", "target", target, "error", err)
		return &report.Analysis{Error: FatalAnalysisMessage}
	}

	result := &report.Analysis{
		ID:          uuid.NewString(),
		URL:         u.String(),
		GeneratedAt: time.Now().UTC(),
	}

	var (
		wg    sync.WaitGroup
		fatal error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.SEO, fatal = e.analyzeContent(ctx, u)
	}()
	go func() {
		defer wg.Done()
		result.Security = e.analyzeSecurity(ctx, u)
	}()
	wg.Wait()

	if fatal != nil {
		e.log.Errorw("analysis failed", "url", u.String(), "error", fatal)
		return &report.Analysis{Error: FatalAnalysisMessage}
	}
	return result
}

// analyzeContent fetches and parses the page, then derives the SEO report.
// Its error return is the engine's single fatal condition.
func (e *Engine) analyzeContent(ctx context.Context, u *url.URL) (*report.SEO, error) {
	body, status, err := e.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFatalFetch, err)
	}
	if status >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: status %d", ErrFatalFetch, status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrFatalFetch, err)
	}

	s := seo.Extract(doc, u)
	s.Technical.RobotsTxt = e.fetchRobots(ctx, u)
	return s, nil
}

// fetchRobots is a soft probe: an unreachable robots.txt reports as absent.
func (e *Engine) fetchRobots(ctx context.Context, u *url.URL) report.RobotsTxt {
	return probe.Soft(e.log, "robots.txt", report.RobotsTxt{}, func() (report.RobotsTxt, error) {
		body, status, err := e.fetcher.Fetch(ctx, u.Scheme+"://"+u.Host+"/robots.txt")
		if err != nil {
			return report.RobotsTxt{}, err
		}
		if status != http.StatusOK {
			return report.RobotsTxt{}, nil
		}
		return seo.CountDisallows(string(body)), nil
	})
}

// analyzeSecurity populates the three security sub-results independently.
// The grading poll targets a different endpoint than the host probes, so it
// runs concurrently with them.
func (e *Engine) analyzeSecurity(ctx context.Context, u *url.URL) *report.Security {
	sec := &report.Security{}
	baseURL := u.Scheme + "://" + u.Host

	var wg sync.WaitGroup

	if !e.skipTLS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			endpoints, state := e.tls.Assess(ctx, u.Hostname())
			if state == ssllabs.StateReady {
				sec.TLS = &report.TLSGrade{Endpoints: endpoints}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sec.Headers = e.headers.Check(ctx, baseURL)
		sec.Vulnerabilities = e.surface.Scan(ctx, baseURL)
	}()

	wg.Wait()
	return sec
}

// Package probe implements the external security probes: the response-header
// check and the fixed-catalogue surface scan.
package probe

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sitegauge/sitegauge/internal/constants"
	"github.com/sitegauge/sitegauge/internal/report"
)

// HeaderProbe reads a fixed set of security headers from the target root.
type HeaderProbe struct {
	client *http.Client
	log    *zap.SugaredLogger
}

// NewHeaderProbe returns a probe that follows redirects (capped) and times
// out per request.
func NewHeaderProbe(log *zap.SugaredLogger) *HeaderProbe {
	return &HeaderProbe{
		log: log,
		client: &http.Client{
			Timeout:       constants.ProbeTimeout,
			CheckRedirect: cappedRedirects,
		},
	}
}

func cappedRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= constants.MaxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

// Check issues one minimal-body request to baseURL and reads five headers.
// Any failure yields a SecurityHeaders value with all fields null; the
// security branch never fails because headers are unreachable.
func (p *HeaderProbe) Check(ctx context.Context, baseURL string) *report.SecurityHeaders {
	return Soft(p.log, "security-headers", &report.SecurityHeaders{}, func() (*report.SecurityHeaders, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", constants.UserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		h := resp.Header
		return &report.SecurityHeaders{
			StrictTransportSecurity: headerValue(h, "Strict-Transport-Security"),
			XFrameOptions:           headerValue(h, "X-Frame-Options"),
			XXSSProtection:          headerValue(h, "X-XSS-Protection"),
			ContentSecurityPolicy:   headerValue(h, "Content-Security-Policy"),
			XContentTypeOptions:     headerValue(h, "X-Content-Type-Options"),
		}, nil
	})
}

// headerValue returns nil for absent headers so they serialize as JSON null.
func headerValue(h http.Header, name string) *string {
	v := h.Get(name)
	if v == "" {
		return nil
	}
	return &v
}

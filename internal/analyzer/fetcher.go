package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sitegauge/sitegauge/internal/constants"
)

// Fetcher retrieves raw bodies for the content branch.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (body []byte, statusCode int, err error)
}

// HTTPFetcher is the production Fetcher: capped redirects, capped body size,
// fixed User-Agent.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with the engine's page timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: constants.PageTimeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= constants.MaxRedirects {
					return fmt.Errorf("stopped after %d redirects", constants.MaxRedirects)
				}
				return nil
			},
		},
	}
}

// Fetch GETs target and returns up to MaxBodyBytes of the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", constants.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

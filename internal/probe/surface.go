package probe

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sitegauge/sitegauge/internal/constants"
	"github.com/sitegauge/sitegauge/internal/report"
)

// Catalogue is the immutable probe list for a surface scan. The default
// catalogue is a deliberate 9 + 11 + 1 = 21 request bound; it is injected
// rather than re-declared per call so tests can swap it.
type Catalogue struct {
	AdminPaths      []string
	SensitiveFiles  []string
	IndexSignatures []string
}

var defaultAdminPaths = []string{
	"/admin",
	"/administrator",
	"/wp-admin",
	"/wp-login.php",
	"/phpmyadmin",
	"/admin.php",
	"/login",
	"/cpanel",
	"/manager/html",
}

var defaultSensitiveFiles = []string{
	"/.env",
	"/.git/config",
	"/.htaccess",
	"/.DS_Store",
	"/config.php",
	"/wp-config.php.bak",
	"/backup.zip",
	"/backup.sql",
	"/database.sql",
	"/dump.sql",
	"/.aws/credentials",
}

var defaultIndexSignatures = []string{
	"Index of /",
	"Directory Listing",
	"<title>Index of",
}

// DefaultCatalogue returns the fixed production probe list.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		AdminPaths:      defaultAdminPaths,
		SensitiveFiles:  defaultSensitiveFiles,
		IndexSignatures: defaultIndexSignatures,
	}
}

// SurfaceProbe scans a fixed path catalogue against the target host.
type SurfaceProbe struct {
	catalogue Catalogue
	limiter   *rate.Limiter
	client    *http.Client
	log       *zap.SugaredLogger
}

// NewSurfaceProbe returns a scanner that never follows redirects (a redirect
// off an admin path is itself the signal) and paces its requests.
func NewSurfaceProbe(catalogue Catalogue, log *zap.SugaredLogger) *SurfaceProbe {
	return &SurfaceProbe{
		catalogue: catalogue,
		log:       log,
		limiter:   rate.NewLimiter(rate.Limit(constants.SurfaceProbesPerSecond), constants.SurfaceProbesPerSecond),
		client: &http.Client{
			Timeout: constants.ProbeTimeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Scan runs the three checks in catalogue order. Each request is individually
// fault-tolerant: a failed probe is skipped, never aborts the loop.
func (p *SurfaceProbe) Scan(ctx context.Context, baseURL string) *report.Vulnerabilities {
	vulns := &report.Vulnerabilities{
		AdminInterfaces: []report.AdminProbe{},
		SensitiveFiles:  []report.SensitiveFile{},
	}

	for _, path := range p.catalogue.AdminPaths {
		status := p.head(ctx, baseURL+path)
		if status == 0 || status == http.StatusNotFound {
			continue
		}
		vulns.AdminInterfaces = append(vulns.AdminInterfaces, report.AdminProbe{
			Path:       path,
			Status:     status,
			Accessible: status < 400,
		})
	}

	vulns.DirectoryIndexing = p.indexListing(ctx, baseURL)

	for _, path := range p.catalogue.SensitiveFiles {
		status := p.head(ctx, baseURL+path)
		if status != http.StatusOK {
			continue
		}
		vulns.SensitiveFiles = append(vulns.SensitiveFiles, report.SensitiveFile{
			Path:       path,
			Status:     status,
			Accessible: true,
		})
	}

	return vulns
}

// head issues one paced minimal-body request and returns the status code,
// 0 on any failure.
func (p *SurfaceProbe) head(ctx context.Context, target string) int {
	return Soft(p.log, "surface "+target, 0, func() (int, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return 0, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("User-Agent", constants.UserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		return resp.StatusCode, nil
	})
}

// indexListing fetches the site root and looks for directory-listing
// signatures in the body.
func (p *SurfaceProbe) indexListing(ctx context.Context, baseURL string) bool {
	return Soft(p.log, "directory-index", false, func() (bool, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return false, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("User-Agent", constants.UserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, constants.IndexBodyLimitBytes))
		if err != nil {
			return false, err
		}
		text := string(body)
		for _, sig := range p.catalogue.IndexSignatures {
			if strings.Contains(text, sig) {
				return true, nil
			}
		}
		return false, nil
	})
}

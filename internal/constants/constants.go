// Package constants centralizes the fixed budgets and timing knobs used by the
// analysis engine. None of these are runtime-configurable: the probe catalogue
// and poll budget are deliberate bounds, not tunables.
package constants

import "time"

const (
	// UserAgent identifies the engine on every outbound request.
	UserAgent = "sitegauge/1.0"

	// MaxRedirects caps redirect chains on page and header fetches.
	MaxRedirects = 5
	// MaxBodyBytes caps how much of a response body the engine reads.
	MaxBodyBytes = 10 << 20
	// IndexBodyLimitBytes caps the root-page body read for the
	// directory-listing check.
	IndexBodyLimitBytes = 64 << 10
)

const (
	// PageTimeout bounds the primary content fetch.
	PageTimeout = 10 * time.Second
	// ProbeTimeout bounds each individual header/path probe.
	ProbeTimeout = 8 * time.Second
	// SurfaceProbesPerSecond paces the fixed 21-request surface scan.
	SurfaceProbesPerSecond = 10
)

const (
	// TLSPollAttempts is the hard upper bound on grading poll iterations.
	TLSPollAttempts = 30
	// TLSPollInterval is the fixed wait between poll iterations.
	TLSPollInterval = 10 * time.Second
)

package analyzer

import "errors"

var (
	// ErrInvalidURL means the target string could not be normalized into a
	// usable URL at all.
	ErrInvalidURL = errors.New("invalid target url")
	// ErrFatalFetch means the primary page could not be retrieved. This is
	// the one failure that collapses the whole analysis.
	ErrFatalFetch = errors.New("primary page fetch failed")
)

// FatalAnalysisMessage is the report-level error indicator for a fatal fetch.
const FatalAnalysisMessage = "Failed to analyze the page"

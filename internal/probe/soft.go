package probe

import "go.uber.org/zap"

// Soft runs fn and absorbs its failure: on error the default value is
// returned and the cause is logged, never surfaced. Every individual check in
// the security branch routes through this so one flaky probe cannot abort a
// scan.
func Soft[T any](log *zap.SugaredLogger, name string, def T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		log.Warnw("probe failed, using default", "probe", name, "error", err)
		return def
	}
	return v
}

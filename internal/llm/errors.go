package llm

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded marks quota and availability failures: the only service errors
// the pipeline recovers from, by switching to heuristic extraction.
var ErrQuotaExceeded = errors.New("extraction service quota or availability exhausted")

// QuotaError carries the provider detail behind ErrQuotaExceeded.
type QuotaError struct {
	Provider string
	Status   int
	Cause    error
}

func (e *QuotaError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

func (e *QuotaError) Unwrap() error { return e.Cause }

// IsQuota reports whether err should trigger the fallback path.
func IsQuota(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

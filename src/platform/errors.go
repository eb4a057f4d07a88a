package platform

import (
	"errors"
	"fmt"
)

// ErrAuth indicates the platform rejected our credentials. Runs abort on it.
var ErrAuth = errors.New("platform: authentication failure")

// ErrRateLimited indicates the platform throttled the call (HTTP 429).
var ErrRateLimited = errors.New("platform: rate limited")

// StatusError wraps an unexpected platform response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform: unexpected status %d: %s", e.Status, e.Body)
}

// IsTransient reports whether the error should be logged and skipped rather
// than aborting the run. Anything that is not auth or rate-limit is treated
// as transient.
func IsTransient(err error) bool {
	return err != nil && !errors.Is(err, ErrAuth) && !errors.Is(err, ErrRateLimited)
}

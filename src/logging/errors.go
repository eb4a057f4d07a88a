package logging

import "strings"

// IsRateLimit classifies provider and platform errors that indicate
// throttling. Remote services disagree on shape, so match on message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429")
}

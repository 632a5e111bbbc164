package transport

import (
	"regexp"

	"github.com/rs/zerolog"
)

// IsInApp reports whether the user agent belongs to a known embedding
// client (in-app browser). Detected once at agent startup; the result
// switches the dispatcher to its dual-channel strategy.
func IsInApp(userAgent, pattern string, logger zerolog.Logger) bool {
	if pattern == "" || userAgent == "" {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn().Err(err).Str("pattern", pattern).Msg("Invalid in-app pattern, assuming normal browser")
		return false
	}
	return re.MatchString(userAgent)
}

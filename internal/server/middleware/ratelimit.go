package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit returns an HTTP middleware limiting requests per IP address
// to the specified number per minute, using a sliding window.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}

// LoginRateLimit throttles credential-bearing endpoints much harder
// than the general API: a tight per-IP window over a longer horizon.
func LoginRateLimit(attemptsPer15Min int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(attemptsPer15Min, 15*time.Minute)
}

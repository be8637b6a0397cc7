package constants

import "time"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// ConsoleMutationRequestsPerMinute caps submit/delete traffic against the upstream API
	ConsoleMutationRequestsPerMinute = 30
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}

// Remote participant API
const (
	ParticipantAPIRoot       = "/participantapi"
	DefaultParticipantAPIURL = "http://localhost:8080"
)

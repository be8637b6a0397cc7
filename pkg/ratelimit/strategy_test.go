package ratelimit

import (
	"testing"
	"time"
)

func TestInMemoryRateLimiter_IsLimited_IsPerKey(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-a should not be limited")
	}

	limited, err = limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("second immediate request for client-a should be limited")
	}

	limited, err = limiter.IsLimited("client-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-b should not be limited (per-key limiter)")
	}
}

func TestNewRateLimiter_FallsBackToInMemory(t *testing.T) {
	limiter := NewRateLimiter(&RateLimitConfig{Requests: 5, Window: time.Minute})

	if _, ok := limiter.(*InMemoryRateLimiter); !ok {
		t.Fatalf("expected in-memory limiter when Redis is nil, got %T", limiter)
	}

	requests, window := limiter.GetLimitDetails()
	if requests != 5 || window != time.Minute {
		t.Fatalf("unexpected limit details: %d/%s", requests, window)
	}
}

func TestNewRedisRateLimiter_DefaultsKeyPrefix(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, 1, time.Second, "", nil)

	if limiter.keyPrefix != DefaultKeyPrefix {
		t.Fatalf("expected default key prefix, got %q", limiter.keyPrefix)
	}
}

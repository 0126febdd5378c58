package ratelimit

import (
	"strings"
	"time"
)

// RouteLimit is the limit applied to requests whose path starts with Prefix.
type RouteLimit struct {
	Prefix string        // Path prefix, e.g. "/api/exports/"
	Method string        // HTTP method; empty matches any
	Limit  int           // Requests per Window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity; defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept before cleanup drops it.
	IdleTTL   time.Duration
	Whitelist map[string]bool
	Routes    []RouteLimit
}

// DefaultConfig returns limits suited to the scoring API: reads that trigger scoring
// get scoringPerMinute, everything else defaultPerMinute.
func DefaultConfig(defaultPerMinute, scoringPerMinute int) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    defaultPerMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Routes:          DefaultRoutes(scoringPerMinute),
	}
}

// DefaultRoutes returns the per-route limits. Health and metrics are never limited.
func DefaultRoutes(scoringPerMinute int) []RouteLimit {
	burst := max(scoringPerMinute/6, 1)
	return []RouteLimit{
		{Prefix: "/health", Limit: 0},
		{Prefix: "/metrics", Limit: 0},
		{Prefix: "/api/exports/", Method: "POST", Limit: max(scoringPerMinute/10, 1), Window: time.Minute, Burst: 2},
		{Prefix: "/api/candidates/", Method: "GET", Limit: scoringPerMinute, Window: time.Minute, Burst: burst},
	}
}

// ParseWhitelist turns a list of client IPs into a lookup set, ignoring blanks.
func ParseWhitelist(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

// match returns the first route whose prefix and method fit the request, or nil.
func match(path, method string, routes []RouteLimit) *RouteLimit {
	for i := range routes {
		r := &routes[i]
		if r.Method != "" && r.Method != method {
			continue
		}
		if strings.HasPrefix(path, r.Prefix) {
			return r
		}
	}
	return nil
}

package http

import (
	"net/url"
	"strconv"
	"strings"

	"unitrates/internal/core"
)

// SearchDefaults carries the server-configured fallbacks applied when a
// request omits tuning parameters.
type SearchDefaults struct {
	Limit    int
	MinScore int
}

// maxRequestLimit caps the per-request result limit. It matches the
// fuzzy path's candidate cap; no request can see more rows than that.
const maxRequestLimit = 10000

// ParseSearchRequest builds a search request from query parameters.
// Missing or malformed numeric parameters fall back to the defaults;
// out-of-range values are clamped so a hand-edited URL cannot trip the
// engine's contract checks.
func ParseSearchRequest(query url.Values, defaults SearchDefaults) core.SearchRequest {
	req := core.SearchRequest{
		Query:    sanitizeInput(query.Get("q")),
		Year:     sanitizeInput(query.Get("year")),
		Month:    sanitizeInput(query.Get("month")),
		Province: sanitizeInput(query.Get("province")),
		City:     sanitizeInput(query.Get("city")),
		Fuzzy:    parseBool(query.Get("fuzzy")),
		Limit:    defaults.Limit,
		MinScore: defaults.MinScore,
	}

	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > maxRequestLimit {
				n = maxRequestLimit
			}
			req.Limit = n
		}
	}
	if v := strings.TrimSpace(query.Get("min_score")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			if n < 0 {
				n = 0
			}
			if n > 100 {
				n = 100
			}
			req.MinScore = n
		}
	}

	return req
}

// parseBool accepts the value shapes checkboxes and query strings
// produce.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

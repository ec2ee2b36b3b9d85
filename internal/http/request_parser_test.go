package http

import (
	"net/url"
	"testing"
)

func TestParseSearchRequestDefaults(t *testing.T) {
	defaults := SearchDefaults{Limit: 100, MinScore: 70}

	req := ParseSearchRequest(url.Values{}, defaults)
	if req.Query != "" || req.Fuzzy {
		t.Fatalf("empty values parsed to %+v", req)
	}
	if req.Limit != 100 || req.MinScore != 70 {
		t.Fatalf("defaults not applied: limit=%d min_score=%d", req.Limit, req.MinScore)
	}
}

func TestParseSearchRequestValues(t *testing.T) {
	defaults := SearchDefaults{Limit: 100, MinScore: 70}
	q := url.Values{
		"q":         {"  drywall repair "},
		"year":      {"2024"},
		"month":     {"March"},
		"province":  {"Ontario"},
		"city":      {"Toronto"},
		"fuzzy":     {"on"},
		"limit":     {"25"},
		"min_score": {"85"},
	}

	req := ParseSearchRequest(q, defaults)
	if req.Query != "drywall repair" {
		t.Fatalf("query = %q", req.Query)
	}
	if req.Year != "2024" || req.Month != "March" || req.Province != "Ontario" || req.City != "Toronto" {
		t.Fatalf("filters = %+v", req)
	}
	if !req.Fuzzy {
		t.Fatalf("fuzzy checkbox not parsed")
	}
	if req.Limit != 25 || req.MinScore != 85 {
		t.Fatalf("tuning = %d/%d", req.Limit, req.MinScore)
	}
}

func TestParseSearchRequestClamping(t *testing.T) {
	defaults := SearchDefaults{Limit: 100, MinScore: 70}

	tests := []struct {
		name      string
		values    url.Values
		wantLimit int
		wantScore int
	}{
		{"negative limit falls back", url.Values{"limit": {"-5"}}, 100, 70},
		{"zero limit falls back", url.Values{"limit": {"0"}}, 100, 70},
		{"malformed limit falls back", url.Values{"limit": {"lots"}}, 100, 70},
		{"oversized limit clamped", url.Values{"limit": {"4611686018427387904"}}, maxRequestLimit, 70},
		{"score clamped high", url.Values{"min_score": {"150"}}, 100, 100},
		{"score clamped low", url.Values{"min_score": {"-10"}}, 100, 0},
		{"malformed score falls back", url.Values{"min_score": {"high"}}, 100, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ParseSearchRequest(tt.values, defaults)
			if req.Limit != tt.wantLimit || req.MinScore != tt.wantScore {
				t.Fatalf("got limit=%d min_score=%d, want %d/%d",
					req.Limit, req.MinScore, tt.wantLimit, tt.wantScore)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "on", "yes", " ON "} {
		if !parseBool(v) {
			t.Fatalf("parseBool(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off", "no"} {
		if parseBool(v) {
			t.Fatalf("parseBool(%q) = true", v)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  drywall\x00 repair\x07 "); got != "drywall repair" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}

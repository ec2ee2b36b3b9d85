// Package search implements the two-mode search engine over the invoice
// record store: exact token matching pushed down to the store as
// generated SQL, and fuzzy matching that pulls a bounded candidate set
// and ranks it in memory against a string-similarity scorer.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"unitrates/internal/core"
)

// Repository is the store-side port the engine drives. The exact path
// executes a single scored query; the fuzzy path only fetches a
// filter-bounded candidate set and ranks it here.
type Repository interface {
	// SearchExact runs the token-AND query: every term must appear
	// case-insensitively in the item description. When terms is empty,
	// fallback is matched as a single substring instead. Results come
	// back score-descending, store-order within equal scores, at most
	// limit rows.
	SearchExact(ctx context.Context, terms []string, fallback string, f core.Filters, limit int) ([]core.ScoredRecord, error)

	// FetchCandidates returns up to limit records matching only the
	// categorical filters, each with a non-null item description and
	// tagged with its store row identifier.
	FetchCandidates(ctx context.Context, f core.Filters, limit int) ([]core.Record, error)
}

// Options bound the fuzzy path. Zero values fall back to defaults.
type Options struct {
	// CandidateLimit caps how many rows the fuzzy path pulls from the
	// store before in-memory ranking. It bounds worst-case latency.
	CandidateLimit int
	// Overfetch is the multiplier applied to the result limit when
	// scoring ahead of the threshold cut.
	Overfetch int
}

const DefaultCandidateLimit = 10000

// Engine executes search requests. It holds no per-request state and is
// safe for concurrent use over the read-only store.
type Engine struct {
	repo           Repository
	scorer         Scorer
	candidateLimit int
	overfetch      int
}

func NewEngine(repo Repository, scorer Scorer, opts Options) *Engine {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.Overfetch <= 0 {
		opts.Overfetch = DefaultOverfetch
	}
	return &Engine{
		repo:           repo,
		scorer:         scorer,
		candidateLimit: opts.CandidateLimit,
		overfetch:      opts.Overfetch,
	}
}

// Search runs one request end to end. months maps month names to month
// numbers and comes from the filter catalog; a selected month missing
// from it is a contract violation and fails the request.
func (e *Engine) Search(ctx context.Context, req core.SearchRequest, months map[string]int) (core.ResultSet, error) {
	if err := req.Validate(); err != nil {
		return core.ResultSet{}, err
	}

	filters, err := resolveFilters(req, months)
	if err != nil {
		return core.ResultSet{}, err
	}

	if req.Fuzzy {
		candidates, err := e.repo.FetchCandidates(ctx, filters, e.candidateLimit)
		if err != nil {
			return core.ResultSet{}, fmt.Errorf("fetch candidates: %w", err)
		}
		ranked := rankFuzzy(candidates, req.Query, req.Limit, req.MinScore, e.overfetch, e.scorer)
		return core.ResultSet{Fuzzy: true, Records: ranked}, nil
	}

	terms := Tokenize(req.Query)
	fallback := strings.ToLower(strings.TrimSpace(req.Query))
	records, err := e.repo.SearchExact(ctx, terms, fallback, filters, req.Limit)
	if err != nil {
		return core.ResultSet{}, fmt.Errorf("exact search: %w", err)
	}
	return core.ResultSet{Records: records}, nil
}

// resolveFilters turns the request's sentinel-or-value filter strings
// into typed store predicates.
func resolveFilters(req core.SearchRequest, months map[string]int) (core.Filters, error) {
	var f core.Filters

	if req.HasYearFilter() {
		year, err := strconv.Atoi(req.Year)
		if err != nil {
			return f, fmt.Errorf("year filter %q is not numeric: %w", req.Year, err)
		}
		f.Year = &year
	}
	if req.HasMonthFilter() {
		num, ok := months[req.Month]
		if !ok {
			return f, fmt.Errorf("%w: %q", core.ErrUnknownMonth, req.Month)
		}
		f.Month = &num
	}
	if req.HasProvinceFilter() {
		p := req.Province
		f.Province = &p
	}
	if req.HasCityFilter() {
		c := req.City
		f.City = &c
	}
	return f, nil
}

// Package catalog loads and caches the distinct filter values of the
// record store: years, months, provinces and cities. The catalog is
// loaded once per store and session, served from cache afterwards, and
// invalidated only by an explicit refresh after a data reload — never
// re-queried per keystroke.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"unitrates/internal/core"
)

// Source is the store-side port the loader queries. Each method returns
// distinct non-null values in ascending order.
type Source interface {
	DistinctYears(ctx context.Context) ([]int, error)
	DistinctMonths(ctx context.Context) ([]core.Month, error)
	DistinctProvinces(ctx context.Context) ([]string, error)
	DistinctCities(ctx context.Context) ([]string, error)
}

// Snapshot is one immutable view of the filter catalog. Every list
// starts with the "(All)" sentinel. Safe for concurrent reads.
type Snapshot struct {
	Years     []string
	Months    []string
	Provinces []string
	Cities    []string

	monthNums map[string]int
	LoadedAt  time.Time
}

// MonthNumber resolves a month name from the months list to its number.
func (s *Snapshot) MonthNumber(name string) (int, bool) {
	n, ok := s.monthNums[name]
	return n, ok
}

// MonthNumbers returns the name-to-number mapping built from the
// distinct (number, name) pairs. Duplicate names are unsupported for a
// well-formed dataset; if present, the last pair wins.
func (s *Snapshot) MonthNumbers() map[string]int {
	return s.monthNums
}

// Load queries the four distinct-value lists concurrently and builds a
// snapshot.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	var (
		years     []int
		months    []core.Month
		provinces []string
		cities    []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { years, err = src.DistinctYears(gctx); return })
	g.Go(func() (err error) { months, err = src.DistinctMonths(gctx); return })
	g.Go(func() (err error) { provinces, err = src.DistinctProvinces(gctx); return })
	g.Go(func() (err error) { cities, err = src.DistinctCities(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load filter catalog: %w", err)
	}

	snap := &Snapshot{
		Years:     make([]string, 0, len(years)+1),
		Months:    make([]string, 0, len(months)+1),
		Provinces: make([]string, 0, len(provinces)+1),
		Cities:    make([]string, 0, len(cities)+1),
		monthNums: make(map[string]int, len(months)),
		LoadedAt:  time.Now(),
	}

	snap.Years = append(snap.Years, core.AllValues)
	for _, y := range years {
		snap.Years = append(snap.Years, strconv.Itoa(y))
	}

	snap.Months = append(snap.Months, core.AllValues)
	for _, m := range months {
		snap.Months = append(snap.Months, m.Name)
		snap.monthNums[m.Name] = m.Number
	}

	snap.Provinces = append(snap.Provinces, core.AllValues)
	snap.Provinces = append(snap.Provinces, provinces...)

	snap.Cities = append(snap.Cities, core.AllValues)
	snap.Cities = append(snap.Cities, cities...)

	return snap, nil
}

// Cache holds one snapshot per store identifier. There is no TTL and no
// eviction: invalidation is explicit, triggered by a dataset reload.
type Cache struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

func NewCache() *Cache {
	return &Cache{snaps: make(map[string]*Snapshot)}
}

// Snapshot returns the cached catalog for the store, loading it on
// first access.
func (c *Cache) Snapshot(ctx context.Context, storeID string, src Source) (*Snapshot, error) {
	c.mu.RLock()
	snap, ok := c.snaps[storeID]
	c.mu.RUnlock()
	if ok {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another request may have loaded it while we waited for the lock.
	if snap, ok := c.snaps[storeID]; ok {
		return snap, nil
	}

	snap, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	c.snaps[storeID] = snap
	return snap, nil
}

// Invalidate drops the cached snapshot so the next access reloads.
func (c *Cache) Invalidate(storeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, storeID)
}

// Refresh invalidates and immediately reloads the store's snapshot.
func (c *Cache) Refresh(ctx context.Context, storeID string, src Source) (*Snapshot, error) {
	c.Invalidate(storeID)
	return c.Snapshot(ctx, storeID, src)
}

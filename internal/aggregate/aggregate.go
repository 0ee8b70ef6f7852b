// Package aggregate folds normalized delay rows into per-category tallies
// and turns them into delayed-flight percentages.
//
// The airline dimension is open: only airlines seen in the input are
// reported, in first-seen order. The hour dimension is closed: every hour
// from MinHour to MaxHour is reported, in ascending order, even when no
// flight departed in it.
package aggregate

import "github.com/cdtdelta/flightdelays/internal/model"

// Hour bounds for the hourly rollup. 24 exists because a departure time of
// 2400 truncates to hour 24 rather than wrapping to 0.
const (
	MinHour  = 0
	MaxHour  = 24
	HourBins = MaxHour - MinHour + 1
)

// Tally counts flights and delayed flights for one category.
type Tally struct {
	Total   int
	Delayed int
}

// Add records one flight with the given delay in minutes.
func (t *Tally) Add(delay int) {
	t.Total++
	if delay > 0 {
		t.Delayed++
	}
}

// Merge adds other's counts into t.
func (t *Tally) Merge(other Tally) {
	t.Total += other.Total
	t.Delayed += other.Delayed
}

// Percentage returns Delayed/Total*100, or 0 when nothing was counted.
func (t Tally) Percentage() float64 {
	if t.Total <= 0 {
		return 0
	}
	return float64(t.Delayed) / float64(t.Total) * 100
}

// Tallies is an insertion-ordered set of tallies keyed by category.
type Tallies[K comparable] struct {
	order  []K
	counts map[K]*Tally
}

// NewTallies returns an empty accumulator.
func NewTallies[K comparable]() *Tallies[K] {
	return &Tallies[K]{counts: make(map[K]*Tally)}
}

// Observe records one flight in category key.
func (ts *Tallies[K]) Observe(key K, delay int) {
	ts.get(key).Add(delay)
}

// Merge folds other into ts. Categories new to ts are appended in other's
// order. Counts are plain sums, so merging partitions in any grouping gives
// the same totals.
func (ts *Tallies[K]) Merge(other *Tallies[K]) {
	if other == nil {
		return
	}
	for _, key := range other.order {
		ts.get(key).Merge(*other.counts[key])
	}
}

// Get returns the tally for key and whether the key has been observed.
func (ts *Tallies[K]) Get(key K) (Tally, bool) {
	t, ok := ts.counts[key]
	if !ok {
		return Tally{}, false
	}
	return *t, true
}

// Keys returns the observed categories in first-seen order.
func (ts *Tallies[K]) Keys() []K {
	return append([]K(nil), ts.order...)
}

// Len returns the number of observed categories.
func (ts *Tallies[K]) Len() int {
	return len(ts.order)
}

// Shares returns one share per observed category in first-seen order.
func (ts *Tallies[K]) Shares() []model.Share[K] {
	shares := make([]model.Share[K], 0, len(ts.order))
	for _, key := range ts.order {
		shares = append(shares, model.Share[K]{Category: key, Percentage: ts.counts[key].Percentage()})
	}
	return shares
}

func (ts *Tallies[K]) get(key K) *Tally {
	t, ok := ts.counts[key]
	if !ok {
		t = &Tally{}
		ts.counts[key] = t
		ts.order = append(ts.order, key)
	}
	return t
}

// AirlineTallies folds airline rows into tallies.
func AirlineTallies(rows []model.AirlineDelay) *Tallies[string] {
	ts := NewTallies[string]()
	for _, r := range rows {
		ts.Observe(r.Airline, r.Delay)
	}
	return ts
}

// HourTallies folds hour rows into tallies. Rows without an hour, or with an
// hour outside MinHour..MaxHour, are skipped.
func HourTallies(rows []model.HourDelay) *Tallies[int] {
	ts := NewTallies[int]()
	for _, r := range rows {
		if !r.HasHour || r.Hour < MinHour || r.Hour > MaxHour {
			continue
		}
		ts.Observe(r.Hour, r.Delay)
	}
	return ts
}

// ByAirline returns the delayed percentage of every airline in rows, in
// first-seen order. Empty input gives an empty slice.
func ByAirline(rows []model.AirlineDelay) []model.Share[string] {
	return AirlineTallies(rows).Shares()
}

// ByHour returns exactly HourBins shares, one per hour in ascending order.
// Hours with no flights report 0.
func ByHour(rows []model.HourDelay) []model.Share[int] {
	return HourShares(HourTallies(rows))
}

// HourShares expands hour tallies onto the full MinHour..MaxHour axis.
func HourShares(ts *Tallies[int]) []model.Share[int] {
	shares := make([]model.Share[int], 0, HourBins)
	for h := MinHour; h <= MaxHour; h++ {
		t, _ := ts.Get(h)
		shares = append(shares, model.Share[int]{Category: h, Percentage: t.Percentage()})
	}
	return shares
}

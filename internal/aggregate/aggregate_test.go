package aggregate

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtdelta/flightdelays/internal/model"
)

func randomAirlineRows(r *rand.Rand, n int) []model.AirlineDelay {
	rows := make([]model.AirlineDelay, n)
	for i := range rows {
		rows[i] = model.AirlineDelay{
			Airline: fmt.Sprintf("Airline %d", r.Intn(8)),
			Delay:   r.Intn(60) - 10,
		}
	}
	return rows
}

func randomHourRows(r *rand.Rand, n int) []model.HourDelay {
	rows := make([]model.HourDelay, n)
	for i := range rows {
		rows[i] = model.HourDelay{
			Hour:    r.Intn(27) - 1,
			HasHour: r.Intn(10) != 0,
			Delay:   r.Intn(60) - 10,
		}
	}
	return rows
}

func TestTallyPercentage(t *testing.T) {
	var empty Tally
	assert.Equal(t, 0.0, empty.Percentage())

	var tally Tally
	tally.Add(0)
	tally.Add(25)
	tally.Add(-4)
	tally.Add(1)
	assert.Equal(t, 4, tally.Total)
	assert.Equal(t, 2, tally.Delayed)
	assert.Equal(t, 50.0, tally.Percentage())
}

func TestByAirlineScenario(t *testing.T) {
	rows := []model.AirlineDelay{
		{Airline: "A", Delay: 0},
		{Airline: "A", Delay: 25},
		{Airline: "B", Delay: 0},
	}

	got := ByAirline(rows)
	assert.Equal(t, []model.Share[string]{
		{Category: "A", Percentage: 50.0},
		{Category: "B", Percentage: 0.0},
	}, got)
}

func TestByAirlineFirstSeenOrder(t *testing.T) {
	rows := []model.AirlineDelay{
		{Airline: "C", Delay: 5},
		{Airline: "A", Delay: 0},
		{Airline: "C", Delay: 0},
		{Airline: "B", Delay: 30},
	}

	got := ByAirline(rows)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].Category)
	assert.Equal(t, "A", got[1].Category)
	assert.Equal(t, "B", got[2].Category)
	assert.Equal(t, 50.0, got[0].Percentage)
	assert.Equal(t, 100.0, got[2].Percentage)
}

func TestByAirlineEmpty(t *testing.T) {
	got := ByAirline(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestByAirlineProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		rows := randomAirlineRows(r, r.Intn(300))

		distinct := make(map[string]bool)
		for _, row := range rows {
			distinct[row.Airline] = true
		}

		got := ByAirline(rows)
		require.Len(t, got, len(distinct))

		seen := make(map[string]bool)
		for _, s := range got {
			assert.False(t, seen[s.Category], "duplicate airline %s", s.Category)
			seen[s.Category] = true
			assert.GreaterOrEqual(t, s.Percentage, 0.0)
			assert.LessOrEqual(t, s.Percentage, 100.0)
		}
	}
}

func TestByHourScenario(t *testing.T) {
	rows := []model.HourDelay{
		{Hour: 9, HasHour: true, Delay: 0},
		{Hour: 9, HasHour: true, Delay: 12},
		{Hour: 24, HasHour: true, Delay: 3},
		{HasHour: false, Delay: 90},
	}

	got := ByHour(rows)
	require.Len(t, got, HourBins)
	assert.Equal(t, 50.0, got[9].Percentage)
	assert.Equal(t, 100.0, got[24].Percentage)
	assert.Equal(t, 0.0, got[0].Percentage)
}

func TestByHourEmpty(t *testing.T) {
	got := ByHour(nil)
	require.Len(t, got, 25)
	for h, s := range got {
		assert.Equal(t, h, s.Category)
		assert.Equal(t, 0.0, s.Percentage)
	}
}

func TestByHourSkipsRowsWithoutHour(t *testing.T) {
	ts := HourTallies([]model.HourDelay{
		{HasHour: false, Delay: 30},
		{Hour: 25, HasHour: true, Delay: 30},
		{Hour: -1, HasHour: true, Delay: 30},
		{Hour: 3, HasHour: true, Delay: 0},
	})

	assert.Equal(t, 1, ts.Len())
	tally, ok := ts.Get(3)
	require.True(t, ok)
	assert.Equal(t, Tally{Total: 1, Delayed: 0}, tally)
}

func TestByHourProperties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		got := ByHour(randomHourRows(r, r.Intn(400)))
		require.Len(t, got, HourBins)
		for h, s := range got {
			assert.Equal(t, MinHour+h, s.Category)
			assert.GreaterOrEqual(t, s.Percentage, 0.0)
			assert.LessOrEqual(t, s.Percentage, 100.0)
		}
	}
}

func TestMergeMatchesSinglePass(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	rows := randomAirlineRows(r, 500)

	whole := AirlineTallies(rows)

	left := AirlineTallies(rows[:170])
	mid := AirlineTallies(rows[170:320])
	right := AirlineTallies(rows[320:])

	// (left + mid) + right
	a := NewTallies[string]()
	a.Merge(left)
	a.Merge(mid)
	a.Merge(right)

	// left + (right + mid)
	rm := NewTallies[string]()
	rm.Merge(right)
	rm.Merge(mid)
	b := NewTallies[string]()
	b.Merge(left)
	b.Merge(rm)

	for _, key := range whole.Keys() {
		want, _ := whole.Get(key)
		gotA, ok := a.Get(key)
		require.True(t, ok)
		gotB, ok := b.Get(key)
		require.True(t, ok)
		assert.Equal(t, want, gotA, key)
		assert.Equal(t, want, gotB, key)
	}
	assert.Equal(t, whole.Len(), a.Len())
	assert.Equal(t, whole.Len(), b.Len())

	// first-seen order is preserved when partitions are merged in input order
	assert.Equal(t, whole.Keys(), a.Keys())
}

func TestMergeNil(t *testing.T) {
	ts := NewTallies[int]()
	ts.Observe(4, 10)
	ts.Merge(nil)
	assert.Equal(t, 1, ts.Len())
}

func TestHourSharesFromMergedTallies(t *testing.T) {
	morning := HourTallies([]model.HourDelay{{Hour: 6, HasHour: true, Delay: 5}})
	evening := HourTallies([]model.HourDelay{{Hour: 6, HasHour: true, Delay: 0}, {Hour: 18, HasHour: true, Delay: 0}})
	morning.Merge(evening)

	got := HourShares(morning)
	require.Len(t, got, HourBins)
	assert.Equal(t, 50.0, got[6].Percentage)
	assert.Equal(t, 0.0, got[18].Percentage)
}

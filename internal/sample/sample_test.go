package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/config"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	assert.False(t, same)
}

func TestWeightedReturnsConfiguredNames(t *testing.T) {
	s := New(7)
	items := []config.Weight{{Name: "a", W: 0.2}, {Name: "b", W: 0.8}}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[s.Weighted(items)]++
	}
	assert.Len(t, counts, 2)
	assert.Greater(t, counts["b"], counts["a"])
}

func TestTruncatedNormalStaysInRange(t *testing.T) {
	s := New(11)
	for i := 0; i < 5000; i++ {
		v := s.TruncatedNormal(10, 50, 2, 20)
		require.GreaterOrEqual(t, v, 2.0)
		require.LessOrEqual(t, v, 20.0)
	}
}

func TestCountRespectsBounds(t *testing.T) {
	s := New(3)
	p := config.CountParams{Min: 1, Max: 11, Mean: 4.1, Std: 2.0}
	for i := 0; i < 5000; i++ {
		n := s.Count(p)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 11)
	}
}

func TestRateClipsToBand(t *testing.T) {
	s := New(5)
	b := config.RateBand{Avg: 0.07, SD: 0.03, Low: 0, High: 0.17}
	for i := 0; i < 2000; i++ {
		r := s.Rate(b)
		require.GreaterOrEqual(t, r, 0.0)
		require.LessOrEqual(t, r, 0.17)
	}
}

func TestValueWithAvgStaysInRange(t *testing.T) {
	s := New(9)
	r := config.ValueRange{Low: 0.5, High: 45, Avg: 7}
	for i := 0; i < 2000; i++ {
		v := s.ValueWithAvg(r, 1.4)
		require.GreaterOrEqual(t, v, 0.5)
		require.LessOrEqual(t, v, 45.0)
	}
}

func TestDateBetweenSkipsSundays(t *testing.T) {
	s := New(13)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2000; i++ {
		d := s.DateBetween(start, end)
		require.NotEqual(t, time.Sunday, d.Weekday())
		require.False(t, d.Before(start))
		require.False(t, d.After(end))
	}
}

func TestDayTimeWithinActiveHours(t *testing.T) {
	s := New(17)
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	morning := config.PeakWindow{Mean: 9.5, SD: 0.5, Weight: 0.6}
	evening := config.PeakWindow{Mean: 20, SD: 0.7, Weight: 0.4}
	for i := 0; i < 2000; i++ {
		ts := s.DayTime(base, morning, evening, [2]int{8, 22})
		require.GreaterOrEqual(t, ts.Hour(), 8)
		require.LessOrEqual(t, ts.Hour(), 22)
		require.Equal(t, base.Day(), ts.Day())
	}
}

func TestFactorBounds(t *testing.T) {
	s := New(23)
	p := config.FactorParams{Mean: 0.85, Deviation: 0.08}
	for i := 0; i < 2000; i++ {
		f := s.Factor(p)
		require.GreaterOrEqual(t, f, 0.1)
		require.LessOrEqual(t, f, 1.0)
	}
}

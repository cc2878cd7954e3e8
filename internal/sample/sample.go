// Package sample draws values from the configured categorical and continuous
// distributions. All randomness flows through one caller-seeded source, so a
// run is reproducible from (config, seed) alone.
package sample

import (
	"math"
	"math/rand"
	"time"

	"github.com/PSavvateev/cs-data-generator/internal/config"
)

// maxRedraws bounds rejection sampling before falling back to clamping, so a
// degenerate parameter set can never hang a run.
const maxRedraws = 100

// Sampler wraps a seeded random source. It is not safe for concurrent use;
// the generation pipeline is single-threaded by design.
type Sampler struct {
	rng *rand.Rand
}

// New creates a Sampler from a seed.
func New(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform draw in [0,1).
func (s *Sampler) Float64() float64 { return s.rng.Float64() }

// Intn returns a uniform draw in [0,n).
func (s *Sampler) Intn(n int) int { return s.rng.Intn(n) }

// Perm returns a random permutation of [0,n).
func (s *Sampler) Perm(n int) []int { return s.rng.Perm(n) }

// Bernoulli returns true with probability p.
func (s *Sampler) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// Weighted picks a name from an ordered weight table.
func (s *Sampler) Weighted(items []config.Weight) string {
	if len(items) == 0 {
		return ""
	}
	var total float64
	for _, it := range items {
		total += it.W
	}
	r := s.rng.Float64() * total
	for _, it := range items {
		r -= it.W
		if r <= 0 {
			return it.Name
		}
	}
	return items[len(items)-1].Name
}

// Symptom picks a weighted (category, symptom text) pair.
func (s *Sampler) Symptom(items []config.Symptom) (string, string) {
	if len(items) == 0 {
		return "", ""
	}
	var total float64
	for _, it := range items {
		total += it.W
	}
	r := s.rng.Float64() * total
	for _, it := range items {
		r -= it.W
		if r <= 0 {
			return it.Category, it.Text
		}
	}
	last := items[len(items)-1]
	return last.Category, last.Text
}

// TruncatedNormal draws from N(mean, sd) constrained to [low, high].
// Out-of-range draws are rejected and redrawn; after maxRedraws the value is
// clamped instead of propagated.
func (s *Sampler) TruncatedNormal(mean, sd, low, high float64) float64 {
	for i := 0; i < maxRedraws; i++ {
		v := s.rng.NormFloat64()*sd + mean
		if v >= low && v <= high {
			return v
		}
	}
	return math.Max(low, math.Min(high, mean))
}

// Rate draws a rate from a band: normal around the mean, clipped to the
// band's hard bounds and to [0,1].
func (s *Sampler) Rate(b config.RateBand) float64 {
	v := s.rng.NormFloat64()*b.SD + b.Avg
	v = math.Max(b.Low, math.Min(b.High, v))
	return math.Max(0, math.Min(1, v))
}

// BernoulliBand decides a binary outcome whose success rate is itself drawn
// from a band around the configured mean.
func (s *Sampler) BernoulliBand(mean, deviation float64) bool {
	rate := s.rng.NormFloat64()*(deviation/3) + mean
	rate = math.Max(0, math.Min(1, rate))
	return s.rng.Float64() < rate
}

// Count draws a positive integer anchored at the configured mean and clamped
// to [Min, Max]. The result is never below 1.
func (s *Sampler) Count(p config.CountParams) int {
	n := int(math.Round(s.rng.NormFloat64()*p.Std + p.Mean))
	if n < p.Min {
		n = p.Min
	}
	if n > p.Max {
		n = p.Max
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ValueWithAvg draws from a bounded range clustered around its average,
// scaled by a modifier. The spread puts ~99% of mass inside the range.
func (s *Sampler) ValueWithAvg(r config.ValueRange, modifier float64) float64 {
	avg := r.Avg * modifier
	avg = math.Max(r.Low, math.Min(r.High, avg))
	sd := (r.High - r.Low) / 6
	return s.TruncatedNormal(avg, sd, r.Low, r.High)
}

// ResolutionHours draws a closure delay for a category, rounded to half
// hours to produce natural buckets.
func (s *Sampler) ResolutionHours(p config.ResolutionParams) float64 {
	sd := math.Max(p.Std, (p.Max-p.Min)/6)
	v := s.TruncatedNormal(p.Mean, sd, p.Min, p.Max)
	return math.Round(v*2) / 2
}

// Factor draws a budget fraction in [0.1, 1].
func (s *Sampler) Factor(p config.FactorParams) float64 {
	v := s.rng.NormFloat64()*(p.Deviation/3) + p.Mean
	return math.Max(0.1, math.Min(1, v))
}

// DateBetween draws a timestamp uniformly between start and end, skipping
// Sundays (the operation does not open tickets on Sundays).
func (s *Sampler) DateBetween(start, end time.Time) time.Time {
	span := int64(end.Sub(start).Seconds())
	if span <= 0 {
		return start
	}
	for {
		t := start.Add(time.Duration(s.rng.Int63n(span)) * time.Second)
		if t.Weekday() != time.Sunday {
			return t
		}
	}
}

// DayTime re-places a timestamp's clock time following the bimodal daily
// peak distribution, clamped to the active hours.
func (s *Sampler) DayTime(base time.Time, morning, evening config.PeakWindow, active [2]int) time.Time {
	var hour int
	if s.rng.Float64() < morning.Weight {
		hour = int(s.rng.NormFloat64()*morning.SD + morning.Mean)
	} else {
		hour = int(s.rng.NormFloat64()*evening.SD + evening.Mean)
	}
	if hour < active[0] {
		hour = active[0]
	}
	if hour > active[1] {
		hour = active[1]
	}
	return time.Date(base.Year(), base.Month(), base.Day(),
		hour, s.rng.Intn(60), s.rng.Intn(60), 0, base.Location())
}

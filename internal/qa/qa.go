// Package qa samples interactions for quality review and scores them.
package qa

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Reviewer produces QA evaluations for a sampled share of interactions.
type Reviewer struct {
	cfg *config.Config
	s   *sample.Sampler
	log zerolog.Logger
}

// New creates a Reviewer.
func New(cfg *config.Config, s *sample.Sampler, log zerolog.Logger) *Reviewer {
	return &Reviewer{cfg: cfg, s: s, log: log}
}

// Review samples the configured share of interactions and evaluates each.
// Any critical flag zeroes the score; otherwise the score follows the
// configured distribution. The sample is drawn without replacement and
// reviews come out in interaction order.
func (r *Reviewer) Review(interactions []types.Interaction) []types.QAReview {
	num := int(float64(len(interactions)) * r.cfg.QASampleSize)
	if num == 0 {
		return nil
	}

	perm := r.s.Perm(len(interactions))
	picked := append([]int(nil), perm[:num]...)
	sort.Ints(picked)

	reviews := make([]types.QAReview, 0, num)
	for i, idx := range picked {
		rv := types.QAReview{
			ID:                 fmt.Sprintf("QA-%06d", i+1),
			InteractionID:      interactions[idx].ID,
			CustomerCritical:   r.s.Bernoulli(r.cfg.QACustomerCritical),
			BusinessCritical:   r.s.Bernoulli(r.cfg.QABusinessCritical),
			ComplianceCritical: r.s.Bernoulli(r.cfg.QAComplianceCritical),
		}
		if rv.HasCriticalFlags() {
			rv.Score = 0
		} else {
			p := r.cfg.QAScore
			v := r.s.TruncatedNormal(p.Mean, p.Std, p.Min, p.Max)
			rv.Score = math.Round(v*100) / 100
		}
		reviews = append(reviews, rv)
	}

	r.log.Info().Int("reviews", len(reviews)).Msg("evaluated interaction sample")
	return reviews
}

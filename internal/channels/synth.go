// Package channels derives call and chat stream records from phone and chat
// interactions and synthesizes the additional abandoned-session population.
package channels

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Synthesizer builds the per-channel session streams.
type Synthesizer struct {
	cfg *config.Config
	s   *sample.Sampler
	log zerolog.Logger
}

// New creates a Synthesizer.
func New(cfg *config.Config, s *sample.Sampler, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, s: s, log: log}
}

// Calls builds the call stream from phone interactions.
func (sy *Synthesizer) Calls(interactions []types.Interaction) []types.Session {
	return sy.build(types.ChannelPhone, "CAL", sy.cfg.AbandonedCalls, interactions)
}

// Chats builds the chat stream from chat interactions.
func (sy *Synthesizer) Chats(interactions []types.Interaction) []types.Session {
	return sy.build(types.ChannelChat, "CHA", sy.cfg.AbandonedChats, interactions)
}

// build derives one answered session per interaction of the channel, reusing
// the interaction's own timestamps, then appends abandoned sessions sized so
// the realized abandonment ratio lands in the configured band. A channel
// with no interactions gets no abandoned sessions either.
func (sy *Synthesizer) build(channel types.Channel, prefix string, band config.RateBand, interactions []types.Interaction) []types.Session {
	sessions := make([]types.Session, 0)

	for _, in := range interactions {
		if in.Channel != channel {
			continue
		}
		answered := in.Handled
		init := in.Created.Add(-time.Duration(in.SpeedOfAnswer * float64(time.Second)))
		sessions = append(sessions, types.Session{
			ID:          prefix + "-" + in.ID,
			Initialized: init,
			Answered:    &answered,
			IsAbandoned: false,
		})
	}

	answeredCount := len(sessions)
	if answeredCount == 0 {
		return sessions
	}

	rate := sy.s.Rate(band)
	// abandoned / (answered + abandoned) ~ rate
	abandonedCount := int(math.Round(float64(answeredCount) * rate / (1 - rate)))

	for i := 0; i < abandonedCount; i++ {
		init := sy.s.DayTime(
			sy.s.DateBetween(sy.cfg.StartDate, sy.cfg.EndDate),
			sy.cfg.PeakMorning, sy.cfg.PeakEvening, sy.cfg.ActiveHours,
		)
		wait := sy.s.ValueWithAvg(sy.cfg.AbandonedWait, 1.0)
		abandoned := init.Add(time.Duration(wait * float64(time.Second)))

		sessions = append(sessions, types.Session{
			ID:          fmt.Sprintf("%s-ABD-%06d", prefix, i+1),
			Initialized: init,
			Abandoned:   &abandoned,
			IsAbandoned: true,
		})
	}

	sy.log.Info().
		Str("channel", string(channel)).
		Int("answered", answeredCount).
		Int("abandoned", abandonedCount).
		Float64("target_rate", rate).
		Msg("synthesized session stream")

	return sessions
}

// Package ticket implements the ticket-interaction correlator: for every
// ticket it decides the symptom category, the FCR outcome, how many
// interactions the case takes, when each one happens and who handles it,
// then resolves the closure timestamp and the derived durations.
package ticket

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Correlator generates tickets together with their interaction records.
type Correlator struct {
	cfg *config.Config
	s   *sample.Sampler
	log zerolog.Logger
}

// New creates a Correlator.
func New(cfg *config.Config, s *sample.Sampler, log zerolog.Logger) *Correlator {
	return &Correlator{cfg: cfg, s: s, log: log}
}

// Generate produces all tickets and their ordered interactions. Agents and
// customers are read-only inputs; the returned slices are fresh.
func (c *Correlator) Generate(agents []types.Agent, customers []types.Customer) ([]types.Ticket, []types.Interaction, error) {
	if len(agents) == 0 || len(customers) == 0 {
		return nil, nil, fmt.Errorf("correlator needs non-empty agent and customer rosters")
	}

	tickets := make([]types.Ticket, 0, c.cfg.NumTickets)
	interactions := make([]types.Interaction, 0, c.cfg.NumTickets*2)
	interactionSeq := 1

	for i := 0; i < c.cfg.NumTickets; i++ {
		channel := types.Channel(c.s.Weighted(c.cfg.Channels))
		product := c.s.Weighted(c.cfg.Products)
		category, symptom := c.s.Symptom(c.cfg.Symptoms)

		fcrRate, ok := c.cfg.FCRRates[category]
		if !ok {
			return nil, nil, fmt.Errorf("symptom category %q not configured", category)
		}
		countParams, ok := c.cfg.ContactCounts[category]
		if !ok {
			return nil, nil, fmt.Errorf("symptom category %q missing contact counts", category)
		}
		resParams, ok := c.cfg.ResolutionTimes[category]
		if !ok {
			return nil, nil, fmt.Errorf("symptom category %q missing resolution times", category)
		}
		modifier, ok := c.cfg.HandleTimeModifiers[category]
		if !ok {
			return nil, nil, fmt.Errorf("symptom category %q missing handle time modifier", category)
		}

		customer := customers[c.s.Intn(len(customers))]

		created := c.s.DayTime(
			c.s.DateBetween(c.cfg.StartDate, c.cfg.EndDate),
			c.cfg.PeakMorning, c.cfg.PeakEvening, c.cfg.ActiveHours,
		)

		eligible := eligibleAgents(agents, created)
		owner := eligible[c.s.Intn(len(eligible))]

		fcr := c.s.BernoulliBand(fcrRate.Mean, fcrRate.Deviation)
		count := 1
		if !fcr {
			count = c.s.Count(countParams)
			if count < 2 {
				count = 2
			}
		}
		escalated := c.s.Bernoulli(c.cfg.EscalationRate)

		t := types.Ticket{
			ID:         fmt.Sprintf("TKT-%05d", i+1),
			Origin:     channel,
			SymptomCat: category,
			Symptom:    symptom,
			Product:    product,
			Owner:      owner.ID,
			Language:   customer.Language,
			FCR:        fcr,
			Escalated:  escalated,
			Created:    created,
		}

		slots := c.sequenceInteractions(created, count, channel, modifier)
		lastHandled := slots[len(slots)-1].handled

		for _, slot := range slots {
			handler := owner.ID
			if !c.s.Bernoulli(c.cfg.OwnerAffinity) && len(eligible) > 1 {
				other := eligible[c.s.Intn(len(eligible))]
				handler = other.ID
			}
			speed := c.s.ValueWithAvg(c.cfg.SpeedOfAnswer[channel], 1.0)

			interactions = append(interactions, types.Interaction{
				ID:            fmt.Sprintf("INT-%06d", interactionSeq),
				Channel:       channel,
				CustomerID:    customer.ID,
				TicketID:      t.ID,
				HandledBy:     handler,
				Created:       slot.created,
				Handled:       slot.handled,
				HandleTime:    slot.minutes,
				SpeedOfAnswer: math.Round(speed*100) / 100,
				Subject:       symptom,
				Body:          fmt.Sprintf("%s: %s (%s)", category, symptom, product),
			})
			interactionSeq++
		}

		c.resolveClosure(&t, lastHandled, resParams)
		tickets = append(tickets, t)
	}

	c.log.Info().
		Int("tickets", len(tickets)).
		Int("interactions", len(interactions)).
		Msg("correlated tickets and interactions")

	return tickets, interactions, nil
}

type slot struct {
	created time.Time
	handled time.Time
	minutes int
}

// sequenceInteractions places count interactions so that every creation time
// stays within the configured span of the ticket's creation and each slot
// starts at or after the previous slot was handled. Intermediate handle
// times are scaled down when the raw draws cannot fit the span; the final
// slot's handle time is unconstrained since only creations are bounded.
func (c *Correlator) sequenceInteractions(created time.Time, count int, channel types.Channel, modifier float64) []slot {
	handleRange := c.cfg.HandleTime[channel]

	minutes := make([]int, count)
	for i := range minutes {
		m := int(math.Round(c.s.ValueWithAvg(handleRange, modifier)))
		if m < 1 {
			m = 1
		}
		minutes[i] = m
	}

	budget := c.cfg.MaxInteractionSpanHours * 60

	interior := 0
	for _, m := range minutes[:count-1] {
		interior += m
	}
	if count > 1 && interior > budget-count {
		f := float64(budget-count) / float64(interior)
		interior = 0
		for i := 0; i < count-1; i++ {
			scaled := int(float64(minutes[i]) * f)
			if scaled < 1 {
				scaled = 1
			}
			minutes[i] = scaled
			interior += scaled
		}
	}

	slack := budget - interior
	if slack < 0 {
		slack = 0
	}

	// Split a random share of the remaining span into per-slot gaps.
	fractions := make([]float64, count)
	var total float64
	for i := range fractions {
		fractions[i] = c.s.Float64()
		total += fractions[i]
	}
	gapBudget := float64(slack) * c.s.Float64()

	slots := make([]slot, count)
	cursor := created
	for i := 0; i < count; i++ {
		gap := 0
		if total > 0 {
			gap = int(gapBudget * fractions[i] / total)
		}
		start := cursor.Add(time.Duration(gap) * time.Minute)
		end := start.Add(time.Duration(minutes[i]) * time.Minute)
		slots[i] = slot{created: start, handled: end, minutes: minutes[i]}
		cursor = end
	}
	return slots
}

// resolveClosure applies the closure policy and the backlog rule: a ticket
// whose closure lands beyond the data window stays unclosed.
func (c *Correlator) resolveClosure(t *types.Ticket, lastHandled time.Time, resParams config.ResolutionParams) {
	t.LastInteraction = &lastHandled

	delay := c.s.ResolutionHours(resParams)
	var closed time.Time
	switch c.cfg.AnchorClosureTo {
	case types.AnchorFromCreation:
		closed = t.Created.Add(time.Duration(delay * float64(time.Hour)))
	default:
		closed = lastHandled.Add(time.Duration(delay * float64(time.Hour)))
	}
	if closed.Before(lastHandled) {
		closed = lastHandled
	}

	if closed.After(c.cfg.EndDate) {
		newCutoff := c.cfg.EndDate.Add(-time.Duration(c.cfg.BacklogNewWindowHours) * time.Hour)
		if t.Created.After(newCutoff) {
			t.Status = types.StatusNew
		} else {
			t.Status = types.StatusOpen
		}
		return
	}

	t.Status = types.StatusClosed
	t.Closed = &closed
	resolution := closed.Sub(lastHandled).Hours()
	lifecycle := closed.Sub(t.Created).Hours()
	t.ResolutionAfterLast = &resolution
	t.LifecycleHours = &lifecycle
}

func eligibleAgents(agents []types.Agent, at time.Time) []types.Agent {
	out := make([]types.Agent, 0, len(agents))
	for _, a := range agents {
		if !a.StartDate.After(at) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		// The roster clamps the first agent's start date to the window
		// start, so this only happens with hand-built rosters. Fall back to
		// the longest-tenured agent.
		earliest := agents[0]
		for _, a := range agents[1:] {
			if a.StartDate.Before(earliest.StartDate) {
				earliest = a
			}
		}
		out = append(out, earliest)
	}
	return out
}

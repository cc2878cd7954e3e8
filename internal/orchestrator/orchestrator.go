// Package orchestrator runs the full generation pipeline in dependency
// order and audits the result before returning it.
package orchestrator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/channels"
	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/qa"
	"github.com/PSavvateev/cs-data-generator/internal/roster"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/ticket"
	"github.com/PSavvateev/cs-data-generator/internal/types"
	"github.com/PSavvateev/cs-data-generator/internal/verify"
	"github.com/PSavvateev/cs-data-generator/internal/wfm"
)

// Orchestrator wires the generators together. All stages share one seeded
// sampler, so a run is fully determined by its configuration.
type Orchestrator struct {
	cfg *config.Config
	log zerolog.Logger

	// Reassigned counts interactions moved between agents during workforce
	// reconciliation, for reporting.
	Reassigned int
}

// New creates an Orchestrator.
func New(cfg *config.Config, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, log: log}
}

// Run generates a complete dataset: rosters, correlated tickets and
// interactions, the reconciled workforce table, the session streams and the
// QA sample. The dataset is audited before it is returned; any violation
// aborts the run.
func (o *Orchestrator) Run() (*types.Dataset, error) {
	s := sample.New(o.cfg.Seed)
	o.log.Info().Int64("seed", o.cfg.Seed).Msg("starting generation")

	rg := roster.NewGenerator(o.cfg, s)
	agents := rg.Agents()
	customers := rg.Customers()
	o.log.Info().Int("agents", len(agents)).Int("customers", len(customers)).Msg("rosters ready")

	tickets, interactions, err := ticket.New(o.cfg, s, o.log).Generate(agents, customers)
	if err != nil {
		return nil, fmt.Errorf("correlate tickets: %w", err)
	}

	// The reconciler may move interactions between agents, so it runs
	// before anything derived from the interaction table.
	entries, reassigned, err := wfm.New(o.cfg, s, o.log).Reconcile(agents, interactions)
	if err != nil {
		return nil, fmt.Errorf("reconcile workforce table: %w", err)
	}
	o.Reassigned = reassigned

	synth := channels.New(o.cfg, s, o.log)
	calls := synth.Calls(interactions)
	chats := synth.Chats(interactions)

	reviews := qa.New(o.cfg, s, o.log).Review(interactions)

	ds := &types.Dataset{
		Agents:       agents,
		Customers:    customers,
		Tickets:      tickets,
		Interactions: interactions,
		Calls:        calls,
		Chats:        chats,
		WFM:          entries,
		QA:           reviews,
	}

	if violations := verify.Check(o.cfg, ds); len(violations) > 0 {
		for _, v := range violations {
			o.log.Error().Str("table", v.Table).Str("id", v.ID).Msg(v.Rule)
		}
		return nil, fmt.Errorf("dataset failed verification with %d violations, first: %w", len(violations), violations[0])
	}

	o.log.Info().
		Int("tickets", len(tickets)).
		Int("interactions", len(interactions)).
		Int("calls", len(calls)).
		Int("chats", len(chats)).
		Int("wfm_entries", len(entries)).
		Int("qa_reviews", len(reviews)).
		Msg("generation complete")

	return ds, nil
}

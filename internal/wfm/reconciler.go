// Package wfm builds the workforce-management table and reconciles it with
// the interaction stream. Per agent and day it books paid, scheduled,
// available, interaction and productive minutes so that
// 0 <= interactions <= available <= scheduled <= paid always holds and the
// interaction minutes match the interaction table exactly.
package wfm

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

const fullTimeMinutes = 480

// Reconciler builds and balances the WFM table.
type Reconciler struct {
	cfg *config.Config
	s   *sample.Sampler
	log zerolog.Logger
}

// New creates a Reconciler.
func New(cfg *config.Config, s *sample.Sampler, log zerolog.Logger) *Reconciler {
	return &Reconciler{cfg: cfg, s: s, log: log}
}

type dayKey struct {
	agent int
	date  string
}

// Reconcile books one WFM entry per agent per calendar day of the data
// window (from the later of the window start and the agent's start date).
// Interactions that overflow their handler's availability are reassigned to
// the same-day agent with the most slack; as a last resort the day's
// availability is lifted toward the scheduled time. A day whose load exceeds
// even the scheduled time is unrecoverable and returned as an error.
//
// Reconcile may rewrite HandledBy on the passed interactions. It returns the
// entries together with the number of reassignments made.
func (r *Reconciler) Reconcile(agents []types.Agent, interactions []types.Interaction) ([]types.WFMEntry, int, error) {
	entries := make(map[dayKey]*types.WFMEntry)

	// Late tickets can carry interactions a little past the window's last
	// day, so the date range covers that spillover too.
	spillDays := (r.cfg.MaxInteractionSpanHours + 23) / 24
	lastWindowDay := dayOf(r.cfg.EndDate)
	dates := windowDates(r.cfg.StartDate, r.cfg.EndDate.AddDate(0, 0, spillDays))

	for _, a := range agents {
		for _, d := range dates {
			if d.Before(dayOf(a.StartDate)) || d.After(lastWindowDay) {
				continue
			}
			e := &types.WFMEntry{Date: d, AgentID: a.ID}
			if workingDay(d) {
				r.book(e, a.FTE)
			}
			entries[dayKey{a.ID, dateStr(d)}] = e
		}
	}

	// Exact per-day load from the interaction table.
	load := make(map[dayKey]int)
	byKey := make(map[dayKey][]int)
	for i, in := range interactions {
		k := dayKey{in.HandledBy, dateStr(in.Created)}
		load[k] += in.HandleTime
		byKey[k] = append(byKey[k], i)
	}

	// A rest or spillover day that caught load becomes an overtime shift,
	// so the time chain stays intact.
	for _, a := range agents {
		for _, d := range dates {
			k := dayKey{a.ID, dateStr(d)}
			e, ok := entries[k]
			if !ok {
				if load[k] == 0 || d.Before(dayOf(a.StartDate)) {
					continue
				}
				e = &types.WFMEntry{Date: d, AgentID: a.ID}
				entries[k] = e
			}
			if e.WorkingDay || load[k] == 0 {
				continue
			}
			r.book(e, a.FTE)
		}
	}

	reassigned, err := r.balance(agents, dates, entries, load, byKey, interactions)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.WFMEntry, 0, len(entries))
	for _, a := range agents {
		for _, d := range dates {
			k := dayKey{a.ID, dateStr(d)}
			e, ok := entries[k]
			if !ok {
				continue
			}
			e.InteractionsTime = load[k]
			if e.WorkingDay {
				admin := int(r.s.ValueWithAvg(r.cfg.WFMAdminTime, 1.0))
				e.ProductiveTime = min(e.AvailableTime, e.InteractionsTime+admin)
			}
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].AgentID < out[j].AgentID
	})

	r.log.Info().
		Int("entries", len(out)).
		Int("reassigned_interactions", reassigned).
		Msg("reconciled workforce table")

	return out, reassigned, nil
}

// book fills a day's shift budget: paid and scheduled from the FTE, the
// available share from the shrinkage draw.
func (r *Reconciler) book(e *types.WFMEntry, fte float64) {
	scheduled := int(math.Round(fte * fullTimeMinutes))
	e.PaidTime = scheduled
	e.ScheduledTime = scheduled
	e.AvailableTime = int(float64(scheduled) * r.s.Factor(r.cfg.WFMShrinkage))
	e.WorkingDay = true
}

// balance moves interactions off overloaded agent-days until every day fits
// its availability, lifting availability as a last resort.
func (r *Reconciler) balance(agents []types.Agent, dates []time.Time, entries map[dayKey]*types.WFMEntry, load map[dayKey]int, byKey map[dayKey][]int, interactions []types.Interaction) (int, error) {
	reassigned := 0

	for _, d := range dates {
		ds := dateStr(d)
		for _, a := range agents {
			k := dayKey{a.ID, ds}
			e, ok := entries[k]
			if !ok || load[k] <= e.AvailableTime {
				continue
			}

			idxs := append([]int(nil), byKey[k]...)
			for _, idx := range idxs {
				if load[k] <= e.AvailableTime {
					break
				}
				in := interactions[idx]
				to := recipient(agents, entries, load, ds, a.ID, in.HandleTime)
				if to == 0 {
					continue
				}
				nk := dayKey{to, ds}
				interactions[idx].HandledBy = to
				load[k] -= in.HandleTime
				load[nk] += in.HandleTime
				byKey[nk] = append(byKey[nk], idx)
				removeIdx(byKey, k, idx)
				reassigned++
			}

			if load[k] > e.AvailableTime {
				if load[k] > e.ScheduledTime {
					return 0, fmt.Errorf("agent %d on %s: %d interaction minutes exceed %d scheduled minutes",
						a.ID, ds, load[k], e.ScheduledTime)
				}
				e.AvailableTime = load[k]
			}
		}
	}
	return reassigned, nil
}

// recipient picks the same-day agent with the most remaining slack that can
// absorb the given minutes. Ties go to the lowest agent id. Returns 0 when
// nobody fits.
func recipient(agents []types.Agent, entries map[dayKey]*types.WFMEntry, load map[dayKey]int, date string, exclude, minutes int) int {
	best, bestSlack := 0, 0
	for _, a := range agents {
		if a.ID == exclude {
			continue
		}
		k := dayKey{a.ID, date}
		e, ok := entries[k]
		if !ok || !e.WorkingDay {
			continue
		}
		slack := e.AvailableTime - load[k]
		if slack >= minutes && slack > bestSlack {
			best, bestSlack = a.ID, slack
		}
	}
	return best
}

func removeIdx(byKey map[dayKey][]int, k dayKey, idx int) {
	s := byKey[k]
	for i, v := range s {
		if v == idx {
			byKey[k] = append(s[:i], s[i+1:]...)
			return
		}
	}
}

func windowDates(start, end time.Time) []time.Time {
	var out []time.Time
	for d := dayOf(start); !d.After(dayOf(end)); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func workingDay(d time.Time) bool {
	return d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateStr(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

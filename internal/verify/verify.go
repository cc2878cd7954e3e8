// Package verify audits a generated dataset against its cross-table
// consistency rules before it is allowed out the door.
package verify

import (
	"fmt"
	"time"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Violation describes one broken consistency rule on one record.
type Violation struct {
	Table string
	ID    string
	Rule  string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s %s: %s", v.Table, v.ID, v.Rule)
}

// Check audits the dataset and returns every violation found. An empty
// result means the dataset is internally consistent.
func Check(cfg *config.Config, ds *types.Dataset) []Violation {
	var out []Violation

	agents := make(map[int]types.Agent, len(ds.Agents))
	for _, a := range ds.Agents {
		agents[a.ID] = a
	}
	customers := make(map[int]bool, len(ds.Customers))
	for _, c := range ds.Customers {
		customers[c.ID] = true
	}
	tickets := make(map[string]*types.Ticket, len(ds.Tickets))
	for i := range ds.Tickets {
		tickets[ds.Tickets[i].ID] = &ds.Tickets[i]
	}
	interactionIDs := make(map[string]bool, len(ds.Interactions))

	byTicket := make(map[string][]types.Interaction)
	for _, in := range ds.Interactions {
		interactionIDs[in.ID] = true
		byTicket[in.TicketID] = append(byTicket[in.TicketID], in)
	}

	out = append(out, checkTickets(cfg, ds.Tickets, byTicket, agents)...)
	out = append(out, checkInteractions(ds.Interactions, tickets, agents, customers)...)
	out = append(out, checkWFM(ds.WFM, ds.Interactions)...)
	out = append(out, checkSessions("calls", ds.Calls)...)
	out = append(out, checkSessions("chats", ds.Chats)...)

	for _, q := range ds.QA {
		if !interactionIDs[q.InteractionID] {
			out = append(out, Violation{"qa", q.ID, fmt.Sprintf("references unknown interaction %s", q.InteractionID)})
		}
		if q.HasCriticalFlags() && q.Score != 0 {
			out = append(out, Violation{"qa", q.ID, "critical flag with non-zero score"})
		}
	}

	return out
}

func checkTickets(cfg *config.Config, ts []types.Ticket, byTicket map[string][]types.Interaction, agents map[int]types.Agent) []Violation {
	var out []Violation
	span := time.Duration(cfg.MaxInteractionSpanHours) * time.Hour

	for i := range ts {
		t := &ts[i]
		if _, ok := agents[t.Owner]; !ok {
			out = append(out, Violation{"tickets", t.ID, fmt.Sprintf("unknown owner %d", t.Owner)})
		}

		ins := byTicket[t.ID]
		if t.FCR && len(ins) != 1 {
			out = append(out, Violation{"tickets", t.ID, fmt.Sprintf("fcr ticket has %d interactions, want 1", len(ins))})
		}
		if !t.FCR && len(ins) < 2 {
			out = append(out, Violation{"tickets", t.ID, fmt.Sprintf("non-fcr ticket has %d interactions, want >= 2", len(ins))})
		}

		var last time.Time
		for _, in := range ins {
			if in.Created.Before(t.Created) {
				out = append(out, Violation{"tickets", t.ID, fmt.Sprintf("interaction %s created before the ticket", in.ID)})
			}
			if in.Created.After(t.Created.Add(span)) {
				out = append(out, Violation{"tickets", t.ID, fmt.Sprintf("interaction %s created outside the %v span", in.ID, span)})
			}
			if in.Handled.After(last) {
				last = in.Handled
			}
		}

		if t.LastInteraction == nil {
			out = append(out, Violation{"tickets", t.ID, "missing last interaction time"})
		} else if len(ins) > 0 && !t.LastInteraction.Equal(last) {
			out = append(out, Violation{"tickets", t.ID, "last interaction time does not match the interaction table"})
		}

		switch {
		case t.IsClosed():
			if t.Closed == nil || t.ResolutionAfterLast == nil || t.LifecycleHours == nil {
				out = append(out, Violation{"tickets", t.ID, "closed ticket with unresolved closure fields"})
				continue
			}
			if t.LastInteraction != nil && t.Closed.Before(*t.LastInteraction) {
				out = append(out, Violation{"tickets", t.ID, "closed before the last interaction"})
			}
			if t.Closed.After(cfg.EndDate) {
				out = append(out, Violation{"tickets", t.ID, "closed past the data window"})
			}
		default:
			if t.Closed != nil || t.ResolutionAfterLast != nil || t.LifecycleHours != nil {
				out = append(out, Violation{"tickets", t.ID, "open ticket carrying closure fields"})
			}
		}
	}
	return out
}

func checkInteractions(ins []types.Interaction, tickets map[string]*types.Ticket, agents map[int]types.Agent, customers map[int]bool) []Violation {
	var out []Violation
	for _, in := range ins {
		if _, ok := tickets[in.TicketID]; !ok {
			out = append(out, Violation{"interactions", in.ID, fmt.Sprintf("references unknown ticket %s", in.TicketID)})
		}
		if !customers[in.CustomerID] {
			out = append(out, Violation{"interactions", in.ID, fmt.Sprintf("references unknown customer %d", in.CustomerID)})
		}
		a, ok := agents[in.HandledBy]
		if !ok {
			out = append(out, Violation{"interactions", in.ID, fmt.Sprintf("references unknown agent %d", in.HandledBy)})
		} else if in.Created.Before(a.StartDate) {
			out = append(out, Violation{"interactions", in.ID, fmt.Sprintf("handled by agent %d before their start date", in.HandledBy)})
		}
		if in.HandleTime < 1 {
			out = append(out, Violation{"interactions", in.ID, "non-positive handle time"})
		}
		if in.Handled.Before(in.Created) {
			out = append(out, Violation{"interactions", in.ID, "handled before created"})
		}
		if in.SpeedOfAnswer < 0 {
			out = append(out, Violation{"interactions", in.ID, "negative speed of answer"})
		}
	}
	return out
}

func checkWFM(entries []types.WFMEntry, ins []types.Interaction) []Violation {
	var out []Violation

	type key struct {
		agent int
		date  string
	}
	load := make(map[key]int)
	for _, in := range ins {
		load[key{in.HandledBy, in.Created.UTC().Format("2006-01-02")}] += in.HandleTime
	}

	seen := make(map[key]bool)
	for _, e := range entries {
		k := key{e.AgentID, e.Date.Format("2006-01-02")}
		id := fmt.Sprintf("%d/%s", e.AgentID, k.date)
		seen[k] = true

		if e.InteractionsTime < 0 ||
			e.InteractionsTime > e.AvailableTime ||
			e.AvailableTime > e.ScheduledTime ||
			e.ScheduledTime > e.PaidTime {
			out = append(out, Violation{"wfm", id, fmt.Sprintf(
				"broken time chain: interactions=%d available=%d scheduled=%d paid=%d",
				e.InteractionsTime, e.AvailableTime, e.ScheduledTime, e.PaidTime)})
		}
		if e.ProductiveTime < e.InteractionsTime || e.ProductiveTime > e.AvailableTime {
			out = append(out, Violation{"wfm", id, "productive time outside [interactions, available]"})
		}
		if e.InteractionsTime != load[k] {
			out = append(out, Violation{"wfm", id, fmt.Sprintf(
				"booked %d interaction minutes, interaction table has %d", e.InteractionsTime, load[k])})
		}
	}

	for k, minutes := range load {
		if !seen[k] && minutes > 0 {
			out = append(out, Violation{"wfm", fmt.Sprintf("%d/%s", k.agent, k.date),
				fmt.Sprintf("%d interaction minutes with no workforce entry", minutes)})
		}
	}
	return out
}

func checkSessions(table string, sessions []types.Session) []Violation {
	var out []Violation
	for _, s := range sessions {
		answered := s.Answered != nil
		abandoned := s.Abandoned != nil
		if answered == abandoned {
			out = append(out, Violation{table, s.ID, "must be answered or abandoned, exactly one"})
			continue
		}
		if s.IsAbandoned != abandoned {
			out = append(out, Violation{table, s.ID, "abandoned flag disagrees with timestamps"})
		}
		if answered && s.Answered.Before(s.Initialized) {
			out = append(out, Violation{table, s.ID, "answered before initialized"})
		}
		if abandoned && s.Abandoned.Before(s.Initialized) {
			out = append(out, Violation{table, s.ID, "abandoned before initialized"})
		}
	}
	return out
}

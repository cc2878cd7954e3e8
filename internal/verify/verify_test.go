package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// consistentDataset builds a minimal dataset that satisfies every rule.
func consistentDataset(cfg *config.Config) *types.Dataset {
	created := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	handled := created.Add(30 * time.Minute)
	closed := handled.Add(2 * time.Hour)
	resolution := closed.Sub(handled).Hours()
	lifecycle := closed.Sub(created).Hours()

	return &types.Dataset{
		Agents: []types.Agent{{
			ID: 1, FullName: "Emma Smith", FTE: 1,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Status: "active",
		}},
		Customers: []types.Customer{{ID: 1, Name: "Paul Martin", Country: "France", Language: "french"}},
		Tickets: []types.Ticket{{
			ID: "TKT-00001", Origin: types.ChannelPhone, SymptomCat: "logistics",
			Symptom: "status of the order", Status: types.StatusClosed,
			Product: "amplifier", Owner: 1, Language: "french", FCR: true,
			Created: created, Closed: &closed, LastInteraction: &handled,
			ResolutionAfterLast: &resolution, LifecycleHours: &lifecycle,
		}},
		Interactions: []types.Interaction{{
			ID: "INT-000001", Channel: types.ChannelPhone, CustomerID: 1,
			TicketID: "TKT-00001", HandledBy: 1,
			Created: created, Handled: handled, HandleTime: 30, SpeedOfAnswer: 45,
		}},
		WFM: []types.WFMEntry{{
			Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), AgentID: 1,
			PaidTime: 480, ScheduledTime: 480, AvailableTime: 400,
			InteractionsTime: 30, ProductiveTime: 80, WorkingDay: true,
		}},
	}
}

func TestCheckPassesConsistentDataset(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, Check(cfg, consistentDataset(cfg)))
}

func TestCheckCatchesViolations(t *testing.T) {
	tests := []struct {
		name      string
		corrupt   func(ds *types.Dataset)
		wantTable string
	}{
		{
			name:      "unknown ticket reference",
			corrupt:   func(ds *types.Dataset) { ds.Interactions[0].TicketID = "TKT-99999" },
			wantTable: "interactions",
		},
		{
			name:      "unknown customer",
			corrupt:   func(ds *types.Dataset) { ds.Interactions[0].CustomerID = 99 },
			wantTable: "interactions",
		},
		{
			name:      "unknown handler",
			corrupt:   func(ds *types.Dataset) { ds.Interactions[0].HandledBy = 99 },
			wantTable: "interactions",
		},
		{
			name:      "fcr ticket without interactions",
			corrupt:   func(ds *types.Dataset) { ds.Interactions = nil },
			wantTable: "tickets",
		},
		{
			name: "interaction outside span",
			corrupt: func(ds *types.Dataset) {
				ds.Interactions[0].Created = ds.Tickets[0].Created.Add(26 * time.Hour)
			},
			wantTable: "tickets",
		},
		{
			name: "closed before last interaction",
			corrupt: func(ds *types.Dataset) {
				early := ds.Tickets[0].Created.Add(-time.Hour)
				ds.Tickets[0].Closed = &early
			},
			wantTable: "tickets",
		},
		{
			name: "open ticket with closure fields",
			corrupt: func(ds *types.Dataset) {
				ds.Tickets[0].Status = types.StatusOpen
				ds.Tickets[0].FCR = true
			},
			wantTable: "tickets",
		},
		{
			name: "broken wfm chain",
			corrupt: func(ds *types.Dataset) {
				ds.WFM[0].AvailableTime = 500
			},
			wantTable: "wfm",
		},
		{
			name: "wfm minutes drift from interactions",
			corrupt: func(ds *types.Dataset) {
				ds.WFM[0].InteractionsTime = 31
				ds.WFM[0].ProductiveTime = 81
			},
			wantTable: "wfm",
		},
		{
			name: "load without workforce entry",
			corrupt: func(ds *types.Dataset) {
				ds.WFM = nil
			},
			wantTable: "wfm",
		},
		{
			name: "session both answered and abandoned",
			corrupt: func(ds *types.Dataset) {
				now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
				later := now.Add(time.Minute)
				ds.Calls = []types.Session{{
					ID: "CAL-INT-000001", Initialized: now,
					Answered: &later, Abandoned: &later, IsAbandoned: false,
				}}
			},
			wantTable: "calls",
		},
		{
			name: "qa critical with score",
			corrupt: func(ds *types.Dataset) {
				ds.QA = []types.QAReview{{
					ID: "QA-000001", InteractionID: "INT-000001",
					Score: 0.9, CustomerCritical: true,
				}}
			},
			wantTable: "qa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			ds := consistentDataset(cfg)
			tt.corrupt(ds)

			violations := Check(cfg, ds)
			require.NotEmpty(t, violations)

			found := false
			for _, v := range violations {
				if v.Table == tt.wantTable {
					found = true
				}
			}
			assert.True(t, found, "expected a violation in table %s, got %v", tt.wantTable, violations)
		})
	}
}

func TestViolationError(t *testing.T) {
	v := Violation{Table: "tickets", ID: "TKT-00001", Rule: "broken"}
	assert.Equal(t, "tickets TKT-00001: broken", v.Error())
}

package wfm

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

func weekConfig() *config.Config {
	cfg := config.Default()
	cfg.StartDate = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // Monday
	cfg.EndDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)  // Sunday
	return cfg
}

func weekAgents() []types.Agent {
	hired := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []types.Agent{
		{ID: 1, FTE: 1, StartDate: hired, Status: "active"},
		{ID: 2, FTE: 1, StartDate: hired, Status: "active"},
	}
}

func interactionAt(id string, agent int, created time.Time, minutes int) types.Interaction {
	return types.Interaction{
		ID: id, Channel: types.ChannelPhone, HandledBy: agent,
		Created: created, Handled: created.Add(time.Duration(minutes) * time.Minute),
		HandleTime: minutes,
	}
}

func checkChain(t *testing.T, entries []types.WFMEntry) {
	t.Helper()
	for _, e := range entries {
		require.GreaterOrEqual(t, e.InteractionsTime, 0)
		require.LessOrEqual(t, e.InteractionsTime, e.AvailableTime,
			"agent %d on %s", e.AgentID, e.Date.Format("2006-01-02"))
		require.LessOrEqual(t, e.AvailableTime, e.ScheduledTime)
		require.LessOrEqual(t, e.ScheduledTime, e.PaidTime)
		require.GreaterOrEqual(t, e.ProductiveTime, e.InteractionsTime)
		require.LessOrEqual(t, e.ProductiveTime, e.AvailableTime)
	}
}

func checkExactSums(t *testing.T, entries []types.WFMEntry, interactions []types.Interaction) {
	t.Helper()
	type key struct {
		agent int
		date  string
	}
	load := make(map[key]int)
	for _, in := range interactions {
		load[key{in.HandledBy, in.Created.Format("2006-01-02")}] += in.HandleTime
	}
	booked := make(map[key]int)
	for _, e := range entries {
		booked[key{e.AgentID, e.Date.Format("2006-01-02")}] = e.InteractionsTime
	}
	for k, want := range load {
		assert.Equal(t, want, booked[k], "load for agent %d on %s", k.agent, k.date)
	}
}

func TestReconcileBasicWeek(t *testing.T) {
	cfg := weekConfig()
	tue := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	wed := time.Date(2024, 3, 6, 14, 0, 0, 0, time.UTC)

	interactions := []types.Interaction{
		interactionAt("INT-000001", 1, tue, 30),
		interactionAt("INT-000002", 1, tue.Add(time.Hour), 30),
		interactionAt("INT-000003", 1, tue.Add(2*time.Hour), 30),
		interactionAt("INT-000004", 2, wed, 40),
	}

	r := New(cfg, sample.New(42), zerolog.Nop())
	entries, reassigned, err := r.Reconcile(weekAgents(), interactions)
	require.NoError(t, err)
	assert.Zero(t, reassigned)

	// One entry per agent per day of the week.
	assert.Len(t, entries, 14)

	checkChain(t, entries)
	checkExactSums(t, entries, interactions)

	for _, e := range entries {
		switch e.Date.Weekday() {
		case time.Saturday, time.Sunday:
			assert.False(t, e.WorkingDay)
			assert.Zero(t, e.PaidTime)
			assert.Zero(t, e.InteractionsTime)
		default:
			assert.True(t, e.WorkingDay)
			assert.Equal(t, 480, e.PaidTime)
		}
	}
}

func TestReconcileBalancesOverloadedDay(t *testing.T) {
	cfg := weekConfig()
	tue := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	// 500 minutes on one agent in one day always exceeds availability and
	// forces rebalancing against the second agent.
	interactions := make([]types.Interaction, 0, 20)
	for i := 0; i < 20; i++ {
		interactions = append(interactions,
			interactionAt("INT-"+string(rune('A'+i)), 1, tue.Add(time.Duration(i)*time.Minute), 25))
	}

	r := New(cfg, sample.New(42), zerolog.Nop())
	entries, _, err := r.Reconcile(weekAgents(), interactions)
	require.NoError(t, err)

	checkChain(t, entries)
	checkExactSums(t, entries, interactions)

	total := 0
	for _, e := range entries {
		if e.Date.Format("2006-01-02") == "2024-03-05" {
			total += e.InteractionsTime
		}
	}
	assert.Equal(t, 500, total)
}

func TestReconcileFailsWhenLoadExceedsSchedule(t *testing.T) {
	cfg := weekConfig()
	tue := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

	agents := weekAgents()[:1]
	interactions := make([]types.Interaction, 0, 10)
	for i := 0; i < 10; i++ {
		interactions = append(interactions,
			interactionAt("INT-"+string(rune('A'+i)), 1, tue.Add(time.Duration(i)*time.Minute), 50))
	}

	r := New(cfg, sample.New(42), zerolog.Nop())
	_, _, err := r.Reconcile(agents, interactions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduled minutes")
}

func TestRestDayWithLoadBecomesOvertimeShift(t *testing.T) {
	cfg := weekConfig()
	sat := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	interactions := []types.Interaction{interactionAt("INT-000001", 1, sat, 30)}

	r := New(cfg, sample.New(42), zerolog.Nop())
	entries, _, err := r.Reconcile(weekAgents(), interactions)
	require.NoError(t, err)

	checkChain(t, entries)
	for _, e := range entries {
		if e.AgentID == 1 && e.Date.Weekday() == time.Saturday {
			assert.True(t, e.WorkingDay)
			assert.Equal(t, 30, e.InteractionsTime)
			assert.Greater(t, e.ScheduledTime, 0)
		}
	}
}

func TestLateHireHasNoEarlyEntries(t *testing.T) {
	cfg := weekConfig()
	agents := weekAgents()
	agents[1].StartDate = time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC) // Thursday

	r := New(cfg, sample.New(42), zerolog.Nop())
	entries, _, err := r.Reconcile(agents, nil)
	require.NoError(t, err)

	for _, e := range entries {
		if e.AgentID == 2 {
			assert.False(t, e.Date.Before(agents[1].StartDate))
		}
	}
	// 7 days for agent 1, Thursday through Sunday for agent 2.
	assert.Len(t, entries, 11)
}

func TestReconcileDeterminism(t *testing.T) {
	cfg := weekConfig()
	tue := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	build := func() []types.Interaction {
		return []types.Interaction{
			interactionAt("INT-000001", 1, tue, 30),
			interactionAt("INT-000002", 2, tue, 45),
		}
	}

	r1 := New(cfg, sample.New(9), zerolog.Nop())
	e1, _, err := r1.Reconcile(weekAgents(), build())
	require.NoError(t, err)

	r2 := New(cfg, sample.New(9), zerolog.Nop())
	e2, _, err := r2.Reconcile(weekAgents(), build())
	require.NoError(t, err)

	assert.Equal(t, e1, e2)
}

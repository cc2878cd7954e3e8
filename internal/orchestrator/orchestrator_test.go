package orchestrator

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/config"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.NumTickets = 120
	cfg.UniqueCustomers = 60
	cfg.UniqueAgents = 6
	cfg.StartDate = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndDate = time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	return cfg
}

func TestRunProducesVerifiedDataset(t *testing.T) {
	cfg := smallConfig()
	require.NoError(t, cfg.Validate())

	orch := New(cfg, zerolog.Nop())
	ds, err := orch.Run()
	require.NoError(t, err)

	assert.Len(t, ds.Agents, cfg.UniqueAgents)
	assert.Len(t, ds.Customers, cfg.UniqueCustomers)
	assert.Len(t, ds.Tickets, cfg.NumTickets)
	assert.GreaterOrEqual(t, len(ds.Interactions), cfg.NumTickets)
	assert.NotEmpty(t, ds.WFM)

	// Session streams exist for phone and chat traffic.
	hasPhone, hasChat := false, false
	for _, in := range ds.Interactions {
		switch in.Channel {
		case "phone":
			hasPhone = true
		case "chat":
			hasChat = true
		}
	}
	if hasPhone {
		assert.NotEmpty(t, ds.Calls)
	}
	if hasChat {
		assert.NotEmpty(t, ds.Chats)
	}
}

func TestRunDeterminism(t *testing.T) {
	cfg := smallConfig()

	d1, err := New(cfg, zerolog.Nop()).Run()
	require.NoError(t, err)
	d2, err := New(cfg, zerolog.Nop()).Run()
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestRunSeedChangesOutput(t *testing.T) {
	cfg1 := smallConfig()
	cfg2 := smallConfig()
	cfg2.Seed = cfg1.Seed + 1

	d1, err := New(cfg1, zerolog.Nop()).Run()
	require.NoError(t, err)
	d2, err := New(cfg2, zerolog.Nop()).Run()
	require.NoError(t, err)

	assert.NotEqual(t, d1.Tickets, d2.Tickets)
}

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
)

func TestAgents(t *testing.T) {
	cfg := config.Default()
	cfg.UniqueAgents = 8
	g := NewGenerator(cfg, sample.New(cfg.Seed))

	agents := g.Agents()
	require.Len(t, agents, 8)

	for i, a := range agents {
		assert.Equal(t, i+1, a.ID)
		assert.NotEmpty(t, a.FullName)
		assert.Equal(t, "support_agent", a.Position)
		assert.Equal(t, "active", a.Status)
		assert.GreaterOrEqual(t, a.HourlyRateEUR, 12.0)
		assert.LessOrEqual(t, a.HourlyRateEUR, 16.0)
		if i < 2 {
			assert.Equal(t, 0.75, a.FTE)
		} else {
			assert.Equal(t, 1.0, a.FTE)
		}
	}

	// Somebody must be on staff from day one of the window.
	assert.False(t, agents[0].StartDate.After(cfg.StartDate))
}

func TestCustomers(t *testing.T) {
	cfg := config.Default()
	cfg.UniqueCustomers = 50
	g := NewGenerator(cfg, sample.New(cfg.Seed))

	customers := g.Customers()
	require.Len(t, customers, 50)

	for _, c := range customers {
		assert.NotEmpty(t, c.Name)
		assert.Contains(t, c.Email, "@")
		assert.Equal(t, cfg.CountryLanguage[c.Country], c.Language)
	}
}

func TestRosterDeterminism(t *testing.T) {
	cfg := config.Default()
	cfg.UniqueAgents = 5
	cfg.UniqueCustomers = 20

	a := NewGenerator(cfg, sample.New(1))
	b := NewGenerator(cfg, sample.New(1))

	assert.Equal(t, a.Agents(), b.Agents())
	// Fresh samplers so both generators consumed the same draw sequence.
	a2 := NewGenerator(cfg, sample.New(1))
	b2 := NewGenerator(cfg, sample.New(1))
	assert.Equal(t, a2.Customers(), b2.Customers())
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "channel weights off",
			mutate:  func(c *Config) { c.Channels[0].W = 0.5 },
			wantErr: "channels",
		},
		{
			name:    "unknown channel name",
			mutate:  func(c *Config) { c.Channels = []Weight{{Name: "fax", W: 1.0}} },
			wantErr: "unknown channel",
		},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.EndDate = c.StartDate.AddDate(0, 0, -1) },
			wantErr: "not after start date",
		},
		{
			name:    "unknown closure anchor",
			mutate:  func(c *Config) { c.AnchorClosureTo = types.ClosureAnchor("whenever") },
			wantErr: "closure anchor",
		},
		{
			name:    "zero tickets",
			mutate:  func(c *Config) { c.NumTickets = 0 },
			wantErr: "NumTickets",
		},
		{
			name:    "country without language",
			mutate:  func(c *Config) { delete(c.CountryLanguage, "France") },
			wantErr: "language mapping",
		},
		{
			name:    "category without fcr rate",
			mutate:  func(c *Config) { delete(c.FCRRates, "rma") },
			wantErr: "missing from FCR rates",
		},
		{
			name:    "abandonment bound at one",
			mutate:  func(c *Config) { c.AbandonedCalls.High = 1.0 },
			wantErr: "abandonment",
		},
		{
			name:    "negative escalation rate",
			mutate:  func(c *Config) { c.EscalationRate = -0.1 },
			wantErr: "EscalationRate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DESKGEN_NUM_TICKETS", "123")
	t.Setenv("DESKGEN_SEED", "7")
	t.Setenv("DESKGEN_START_DATE", "2024-01-01")
	t.Setenv("DESKGEN_CLOSURE_ANCHOR", "from_creation")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.NumTickets)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, types.AnchorFromCreation, cfg.AnchorClosureTo)
}

func TestEnvRejectsGarbage(t *testing.T) {
	t.Setenv("DESKGEN_NUM_TICKETS", "plenty")
	_, err := Load("")
	require.Error(t, err)
}

func TestWeightsFromMapIsSorted(t *testing.T) {
	ws := weightsFromMap(map[string]float64{"zeta": 0.5, "alpha": 0.3, "mid": 0.2})
	require.Len(t, ws, 3)
	assert.Equal(t, "alpha", ws[0].Name)
	assert.Equal(t, "mid", ws[1].Name)
	assert.Equal(t, "zeta", ws[2].Name)
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/deskgen.yaml"
	content := []byte("num_tickets: 500\nseed: 99\nchannels:\n  email: 0.5\n  phone: 0.5\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.NumTickets)
	assert.Equal(t, int64(99), cfg.Seed)
	require.Len(t, cfg.Channels, 2)
	assert.Equal(t, "email", cfg.Channels[0].Name)
}

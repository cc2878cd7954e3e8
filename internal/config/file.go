package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// fileConfig mirrors the YAML override file. Every field is optional; only
// present sections replace the corresponding defaults.
type fileConfig struct {
	NumTickets      *int    `yaml:"num_tickets"`
	UniqueCustomers *int    `yaml:"unique_customers"`
	UniqueAgents    *int    `yaml:"unique_agents"`
	Seed            *int64  `yaml:"seed"`
	StartDate       *string `yaml:"start_date"`
	EndDate         *string `yaml:"end_date"`
	EscalationRate  *float64 `yaml:"escalation_rate"`
	ClosureAnchor   *string `yaml:"closure_anchor"`

	Channels  map[string]float64 `yaml:"channels"`
	Countries map[string]float64 `yaml:"countries"`
	Products  map[string]float64 `yaml:"products"`
	Languages map[string]string  `yaml:"country_languages"`
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.NumTickets != nil {
		c.NumTickets = *fc.NumTickets
	}
	if fc.UniqueCustomers != nil {
		c.UniqueCustomers = *fc.UniqueCustomers
	}
	if fc.UniqueAgents != nil {
		c.UniqueAgents = *fc.UniqueAgents
	}
	if fc.Seed != nil {
		c.Seed = *fc.Seed
	}
	if fc.EscalationRate != nil {
		c.EscalationRate = *fc.EscalationRate
	}
	if fc.ClosureAnchor != nil {
		c.AnchorClosureTo = types.ClosureAnchor(*fc.ClosureAnchor)
	}
	if fc.StartDate != nil {
		t, err := parseDate(*fc.StartDate)
		if err != nil {
			return fmt.Errorf("invalid start_date: %w", err)
		}
		c.StartDate = t
	}
	if fc.EndDate != nil {
		t, err := parseDate(*fc.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end_date: %w", err)
		}
		c.EndDate = t
	}
	if fc.Channels != nil {
		c.Channels = weightsFromMap(fc.Channels)
	}
	if fc.Countries != nil {
		c.Countries = weightsFromMap(fc.Countries)
	}
	if fc.Products != nil {
		c.Products = weightsFromMap(fc.Products)
	}
	if fc.Languages != nil {
		c.CountryLanguage = fc.Languages
	}
	return nil
}

// weightsFromMap flattens a YAML map into an ordered weight table. Keys are
// sorted so the sampling order, and with it the whole run, stays
// deterministic regardless of map iteration order.
func weightsFromMap(m map[string]float64) []Weight {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ws := make([]Weight, 0, len(keys))
	for _, k := range keys {
		ws = append(ws, Weight{Name: k, W: m[k]})
	}
	return ws
}

func parseDate(s string) (t time.Time, err error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

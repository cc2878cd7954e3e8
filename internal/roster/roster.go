// Package roster generates the flat agent and customer entity sets. These
// are inputs to the correlation pipeline and carry no cross-table
// constraints of their own.
package roster

import (
	"fmt"
	"strings"
	"time"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/sample"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

var firstNames = []string{
	"Emma", "Liam", "Sophie", "Noah", "Mia", "Lucas", "Hannah", "Finn",
	"Clara", "Jonas", "Lena", "Felix", "Amelie", "Paul", "Ida", "Ben",
	"Charlotte", "Oscar", "Marie", "Henry", "Julia", "Tom", "Laura", "Max",
	"Eva", "David", "Nina", "Simon", "Alice", "Daniel",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Taylor", "Davies", "Wilson",
	"Evans", "Mueller", "Schmidt", "Schneider", "Fischer", "Weber", "Wagner",
	"Becker", "Hoffmann", "Jansen", "de Vries", "van Dijk", "Bakker",
	"Martin", "Bernard", "Dubois", "Moreau", "Laurent", "Lambert",
	"Gruber", "Huber", "Steiner", "Brunner",
}

var emailDomains = []string{
	"example.com", "mail.example.org", "inbox.example.net", "post.example.co.uk",
}

const (
	agentRateBase    = 12.0
	agentRateCeiling = 16.0
	standardPosition = "support_agent"
)

// Generator produces agent and customer rosters from the shared sampler.
type Generator struct {
	cfg *config.Config
	s   *sample.Sampler
}

// NewGenerator creates a roster generator.
func NewGenerator(cfg *config.Config, s *sample.Sampler) *Generator {
	return &Generator{cfg: cfg, s: s}
}

// Agents generates the agent roster. The first two agents work part time
// (FTE 0.75), the rest full time. The first agent's start date is clamped to
// the window start so every ticket in the range has at least one eligible
// handler.
func (g *Generator) Agents() []types.Agent {
	hireStart := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	hireEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	agents := make([]types.Agent, g.cfg.UniqueAgents)
	for i := range agents {
		first := firstNames[g.s.Intn(len(firstNames))]
		last := lastNames[g.s.Intn(len(lastNames))]

		fte := 1.0
		if i < 2 {
			fte = 0.75
		}

		start := g.dayBetween(hireStart, hireEnd)
		if i == 0 && start.After(g.cfg.StartDate) {
			start = g.cfg.StartDate
		}

		agents[i] = types.Agent{
			ID:            i + 1,
			FullName:      first + " " + last,
			FirstName:     first,
			LastName:      last,
			FTE:           fte,
			Position:      standardPosition,
			StartDate:     start,
			Status:        "active",
			HourlyRateEUR: g.hourlyRate(start),
		}
	}
	return agents
}

// Customers generates the customer roster with weighted countries and the
// implied language.
func (g *Generator) Customers() []types.Customer {
	customers := make([]types.Customer, g.cfg.UniqueCustomers)
	for i := range customers {
		first := firstNames[g.s.Intn(len(firstNames))]
		last := lastNames[g.s.Intn(len(lastNames))]
		country := g.s.Weighted(g.cfg.Countries)

		customers[i] = types.Customer{
			ID:       i + 1,
			Name:     first + " " + last,
			Email:    g.email(first, last, i+1),
			Phone:    g.phone(),
			Country:  country,
			Language: g.cfg.CountryLanguage[country],
		}
	}
	return customers
}

func (g *Generator) dayBetween(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, g.s.Intn(days))
}

// hourlyRate derives pay from tenure: base 12-14 EUR plus up to 2 EUR
// experience bonus, capped at 16.
func (g *Generator) hourlyRate(start time.Time) float64 {
	years := g.cfg.EndDate.Sub(start).Hours() / 24 / 365.25
	base := agentRateBase + g.s.Float64()*2
	bonus := years * 0.5
	if bonus > 2 {
		bonus = 2
	}
	rate := base + bonus
	if rate > agentRateCeiling {
		rate = agentRateCeiling
	}
	return float64(int(rate*100)) / 100
}

func (g *Generator) email(first, last string, id int) string {
	domain := emailDomains[g.s.Intn(len(emailDomains))]
	local := strings.ToLower(first) + "." + strings.ToLower(strings.ReplaceAll(last, " ", ""))
	return fmt.Sprintf("%s%d@%s", local, id, domain)
}

func (g *Generator) phone() string {
	return fmt.Sprintf("+%d %d %06d", 30+g.s.Intn(20), 100+g.s.Intn(900), g.s.Intn(1000000))
}

package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

const weightTolerance = 1e-6

// Weight pairs a categorical value with its probability mass.
type Weight struct {
	Name string
	W    float64
}

// Symptom is one weighted (category, symptom text) pair.
type Symptom struct {
	Category string
	Text     string
	W        float64
}

// ValueRange bounds a continuous draw around an average.
type ValueRange struct {
	Low  float64
	High float64
	Avg  float64
}

// RateBand bounds a rate draw (mean, spread and hard clip bounds).
type RateBand struct {
	Avg  float64
	SD   float64
	Low  float64
	High float64
}

// CountParams parameterizes the skewed contacts-per-case draw.
type CountParams struct {
	Min  int
	Max  int
	Mean float64
	Std  float64
}

// FCRRate is the per-category first-contact-resolution rate band.
type FCRRate struct {
	Mean      float64
	Deviation float64
}

// ResolutionParams bounds the closure delay draw in hours.
type ResolutionParams struct {
	Min  float64
	Max  float64
	Mean float64
	Std  float64
}

// PeakWindow describes one mode of the daily traffic distribution.
type PeakWindow struct {
	Mean   float64
	SD     float64
	Weight float64
}

// FactorParams parameterizes a WFM factor draw (fraction of a budget).
type FactorParams struct {
	Mean      float64
	Deviation float64
}

// QAScoreParams bounds the quality score draw.
type QAScoreParams struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Config holds every generation parameter. It is treated as read-only once
// validated; generators never mutate it.
type Config struct {
	NumTickets      int
	UniqueCustomers int
	UniqueAgents    int

	StartDate time.Time
	EndDate   time.Time

	MaxInteractionSpanHours int
	EscalationRate          float64
	OwnerAffinity           float64
	AnchorClosureTo         types.ClosureAnchor
	BacklogNewWindowHours   int

	Seed int64

	Channels        []Weight
	Countries       []Weight
	CountryLanguage map[string]string
	Products        []Weight
	Symptoms        []Symptom

	AbandonedCalls RateBand
	AbandonedChats RateBand
	AbandonedWait  ValueRange // seconds

	PeakMorning PeakWindow
	PeakEvening PeakWindow
	ActiveHours [2]int

	FCRRates            map[string]FCRRate
	ContactCounts       map[string]CountParams
	ResolutionTimes     map[string]ResolutionParams
	HandleTime          map[types.Channel]ValueRange // minutes
	HandleTimeModifiers map[string]float64
	SpeedOfAnswer       map[types.Channel]ValueRange // hours for email, seconds otherwise

	WFMShrinkage FactorParams // available / scheduled
	WFMAdminTime ValueRange   // non-interaction productive minutes per day

	QASampleSize         float64
	QACustomerCritical   float64
	QABusinessCritical   float64
	QAComplianceCritical float64
	QAScore              QAScoreParams
}

// Default returns the baseline configuration of the fictional audio-gear
// support operation.
func Default() *Config {
	return &Config{
		NumTickets:      25000,
		UniqueCustomers: 6000,
		UniqueAgents:    12,

		StartDate: time.Date(2023, 9, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC),

		MaxInteractionSpanHours: 6,
		EscalationRate:          0.12,
		OwnerAffinity:           0.70,
		AnchorClosureTo:         types.AnchorLastInteraction,
		BacklogNewWindowHours:   48,

		Seed: 42,

		Channels: []Weight{
			{Name: "email", W: 0.3},
			{Name: "phone", W: 0.4},
			{Name: "chat", W: 0.3},
		},
		Countries: []Weight{
			{Name: "United Kingdom", W: 0.30},
			{Name: "Germany", W: 0.18},
			{Name: "Austria", W: 0.12},
			{Name: "Netherlands", W: 0.10},
			{Name: "France", W: 0.15},
			{Name: "Belgium", W: 0.05},
			{Name: "Switzerland", W: 0.10},
		},
		CountryLanguage: map[string]string{
			"United Kingdom": "english",
			"Netherlands":    "english",
			"France":         "french",
			"Belgium":        "french",
			"Germany":        "german",
			"Austria":        "german",
			"Switzerland":    "german",
		},
		Products: []Weight{
			{Name: "on-ear_headphones", W: 0.25},
			{Name: "eardrop_headphones", W: 0.30},
			{Name: "speaker_20wt", W: 0.15},
			{Name: "speaker_40wt", W: 0.10},
			{Name: "speaker_flagship", W: 0.03},
			{Name: "amplifier", W: 0.10},
			{Name: "turntable", W: 0.07},
		},
		Symptoms: []Symptom{
			{Category: "troubleshooting", Text: "bluetooth connection", W: 0.08},
			{Category: "troubleshooting", Text: "power supply", W: 0.14},
			{Category: "troubleshooting", Text: "firmware", W: 0.02},
			{Category: "troubleshooting", Text: "sound resolution", W: 0.06},
			{Category: "logistics", Text: "status of the order", W: 0.15},
			{Category: "logistics", Text: "lost package", W: 0.05},
			{Category: "rma", Text: "replacement", W: 0.12},
			{Category: "rma", Text: "return", W: 0.08},
			{Category: "finance", Text: "unsuccessful payment", W: 0.04},
			{Category: "finance", Text: "payment details", W: 0.06},
			{Category: "product", Text: "product consulting / information", W: 0.10},
			{Category: "complaint", Text: "product complaint", W: 0.08},
			{Category: "complaint", Text: "service complaint", W: 0.02},
		},

		AbandonedCalls: RateBand{Avg: 0.07, SD: 0.03, Low: 0.0, High: 0.17},
		AbandonedChats: RateBand{Avg: 0.10, SD: 0.03, Low: 0.0, High: 0.17},
		AbandonedWait:  ValueRange{Low: 3, High: 180, Avg: 60},

		PeakMorning: PeakWindow{Mean: 9.5, SD: 0.5, Weight: 0.6},
		PeakEvening: PeakWindow{Mean: 20, SD: 0.7, Weight: 0.4},
		ActiveHours: [2]int{8, 22},

		FCRRates: map[string]FCRRate{
			"troubleshooting": {Mean: 0.50, Deviation: 0.03},
			"finance":         {Mean: 0.00, Deviation: 0.01},
			"logistics":       {Mean: 0.43, Deviation: 0.04},
			"rma":             {Mean: 0.10, Deviation: 0.12},
			"product":         {Mean: 1.00, Deviation: 0.12},
			"complaint":       {Mean: 0.20, Deviation: 0.12},
		},
		ContactCounts: map[string]CountParams{
			"troubleshooting": {Min: 1, Max: 3, Mean: 1.5, Std: 0.5},
			"finance":         {Min: 1, Max: 4, Mean: 2.3, Std: 1.2},
			"logistics":       {Min: 1, Max: 4, Mean: 1.8, Std: 1.1},
			"rma":             {Min: 1, Max: 11, Mean: 4.1, Std: 2.0},
			"product":         {Min: 1, Max: 3, Mean: 1.2, Std: 0.4},
			"complaint":       {Min: 1, Max: 2, Mean: 1.1, Std: 0.1},
		},
		ResolutionTimes: map[string]ResolutionParams{
			"troubleshooting": {Min: 4, Max: 52, Mean: 38, Std: 10},
			"finance":         {Min: 3, Max: 72, Mean: 50, Std: 12},
			"logistics":       {Min: 6, Max: 68, Mean: 49, Std: 16},
			"rma":             {Min: 8, Max: 168, Mean: 73, Std: 32},
			"product":         {Min: 2, Max: 34, Mean: 28, Std: 10},
			"complaint":       {Min: 1, Max: 68, Mean: 54, Std: 24},
		},
		HandleTime: map[types.Channel]ValueRange{
			types.ChannelEmail: {Low: 0.5, High: 45, Avg: 7},
			types.ChannelPhone: {Low: 0.7, High: 8, Avg: 5.5},
			types.ChannelChat:  {Low: 1, High: 60, Avg: 13},
		},
		HandleTimeModifiers: map[string]float64{
			"troubleshooting": 1.40,
			"logistics":       1.00,
			"rma":             1.15,
			"finance":         0.80,
			"product":         0.50,
			"complaint":       0.60,
		},
		SpeedOfAnswer: map[types.Channel]ValueRange{
			types.ChannelEmail: {Low: 0.1, High: 50, Avg: 17},
			types.ChannelPhone: {Low: 3, High: 360, Avg: 60},
			types.ChannelChat:  {Low: 5, High: 360, Avg: 85},
		},

		WFMShrinkage: FactorParams{Mean: 0.85, Deviation: 0.08},
		WFMAdminTime: ValueRange{Low: 0, High: 120, Avg: 55},

		QASampleSize:         0.05,
		QACustomerCritical:   0.03,
		QABusinessCritical:   0.02,
		QAComplianceCritical: 0.01,
		QAScore:              QAScoreParams{Mean: 0.88, Std: 0.07, Min: 0.6, Max: 1.0},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if file != "" {
		if err := cfg.applyFile(file); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	if c.NumTickets, err = getEnvInt("DESKGEN_NUM_TICKETS", c.NumTickets); err != nil {
		return err
	}
	if c.UniqueCustomers, err = getEnvInt("DESKGEN_CUSTOMERS", c.UniqueCustomers); err != nil {
		return err
	}
	if c.UniqueAgents, err = getEnvInt("DESKGEN_AGENTS", c.UniqueAgents); err != nil {
		return err
	}
	if c.Seed, err = getEnvInt64("DESKGEN_SEED", c.Seed); err != nil {
		return err
	}
	if c.StartDate, err = getEnvDate("DESKGEN_START_DATE", c.StartDate); err != nil {
		return err
	}
	if c.EndDate, err = getEnvDate("DESKGEN_END_DATE", c.EndDate); err != nil {
		return err
	}
	if v := os.Getenv("DESKGEN_CLOSURE_ANCHOR"); v != "" {
		c.AnchorClosureTo = types.ClosureAnchor(v)
	}
	return nil
}

// Validate fails fast on any malformed parameter so generation never starts
// from a bad table.
func (c *Config) Validate() error {
	if c.NumTickets <= 0 {
		return fmt.Errorf("invalid NumTickets %d: must be positive", c.NumTickets)
	}
	if c.UniqueCustomers <= 0 {
		return fmt.Errorf("invalid UniqueCustomers %d: must be positive", c.UniqueCustomers)
	}
	if c.UniqueAgents <= 0 {
		return fmt.Errorf("invalid UniqueAgents %d: must be positive", c.UniqueAgents)
	}
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("end date %s is not after start date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.MaxInteractionSpanHours <= 0 {
		return fmt.Errorf("invalid MaxInteractionSpanHours %d: must be positive", c.MaxInteractionSpanHours)
	}
	if c.EscalationRate < 0 || c.EscalationRate > 1 {
		return fmt.Errorf("invalid EscalationRate %v: must be in [0,1]", c.EscalationRate)
	}
	if c.OwnerAffinity < 0 || c.OwnerAffinity > 1 {
		return fmt.Errorf("invalid OwnerAffinity %v: must be in [0,1]", c.OwnerAffinity)
	}
	if c.AnchorClosureTo != types.AnchorLastInteraction && c.AnchorClosureTo != types.AnchorFromCreation {
		return fmt.Errorf("unknown closure anchor %q", c.AnchorClosureTo)
	}

	if err := checkWeights("channels", c.Channels); err != nil {
		return err
	}
	for _, w := range c.Channels {
		switch types.Channel(w.Name) {
		case types.ChannelEmail, types.ChannelPhone, types.ChannelChat:
		default:
			return fmt.Errorf("channels: unknown channel %q", w.Name)
		}
	}
	if err := checkWeights("countries", c.Countries); err != nil {
		return err
	}
	if err := checkWeights("products", c.Products); err != nil {
		return err
	}
	var symptomSum float64
	for _, s := range c.Symptoms {
		if s.W < 0 {
			return fmt.Errorf("symptoms: negative weight for %q", s.Text)
		}
		symptomSum += s.W
	}
	if math.Abs(symptomSum-1.0) > weightTolerance {
		return fmt.Errorf("symptoms: weights sum to %v, want 1.0", symptomSum)
	}

	for _, w := range c.Countries {
		if _, ok := c.CountryLanguage[w.Name]; !ok {
			return fmt.Errorf("no language mapping for country %q", w.Name)
		}
	}

	// Every symptom category must be covered by every per-category table.
	for _, s := range c.Symptoms {
		if _, ok := c.FCRRates[s.Category]; !ok {
			return fmt.Errorf("symptom category %q missing from FCR rates", s.Category)
		}
		if _, ok := c.ContactCounts[s.Category]; !ok {
			return fmt.Errorf("symptom category %q missing from contact counts", s.Category)
		}
		if _, ok := c.ResolutionTimes[s.Category]; !ok {
			return fmt.Errorf("symptom category %q missing from resolution times", s.Category)
		}
		if _, ok := c.HandleTimeModifiers[s.Category]; !ok {
			return fmt.Errorf("symptom category %q missing from handle time modifiers", s.Category)
		}
	}

	for _, ch := range []types.Channel{types.ChannelEmail, types.ChannelPhone, types.ChannelChat} {
		if _, ok := c.HandleTime[ch]; !ok {
			return fmt.Errorf("channel %q missing from handle time params", ch)
		}
		if _, ok := c.SpeedOfAnswer[ch]; !ok {
			return fmt.Errorf("channel %q missing from speed of answer params", ch)
		}
	}

	if c.ActiveHours[0] < 0 || c.ActiveHours[1] > 23 || c.ActiveHours[0] >= c.ActiveHours[1] {
		return fmt.Errorf("invalid active hours %v", c.ActiveHours)
	}
	if c.AbandonedCalls.High >= 1 || c.AbandonedChats.High >= 1 {
		return fmt.Errorf("abandonment rate upper bound must be below 1")
	}
	if c.QASampleSize < 0 || c.QASampleSize > 1 {
		return fmt.Errorf("invalid QASampleSize %v: must be in [0,1]", c.QASampleSize)
	}
	return nil
}

func checkWeights(name string, ws []Weight) error {
	if len(ws) == 0 {
		return fmt.Errorf("%s: empty weight table", name)
	}
	var sum float64
	for _, w := range ws {
		if w.W < 0 {
			return fmt.Errorf("%s: negative weight for %q", name, w.Name)
		}
		sum += w.W
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%s: weights sum to %v, want 1.0", name, sum)
	}
	return nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDate(key string, fallback time.Time) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

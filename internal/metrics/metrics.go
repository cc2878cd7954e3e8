// Package metrics exposes Prometheus metrics describing a generation run,
// for scraping or pushing from batch invocations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Registry is the application's own prometheus registry, kept separate from
// the default one so pushes carry only generator metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// RecordsTotal tracks the generated record count per table.
var RecordsTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "deskgen",
	Name:      "records_total",
	Help:      "Generated records per output table",
}, []string{"table"})

// FCRRate tracks the realized share of tickets resolved on first contact.
var FCRRate = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "deskgen",
	Name:      "fcr_rate",
	Help:      "Realized first-contact-resolution rate across all tickets",
})

// AbandonmentRate tracks the realized abandonment rate per session channel.
var AbandonmentRate = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "deskgen",
	Name:      "abandonment_rate",
	Help:      "Realized abandonment rate per session channel",
}, []string{"channel"})

// ReassignedInteractions tracks interactions moved between agents during
// workforce reconciliation.
var ReassignedInteractions = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "deskgen",
	Name:      "reassigned_interactions",
	Help:      "Interactions reassigned to balance agent availability",
})

// GenerationDurationSeconds tracks wall time of the generation pipeline.
var GenerationDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "deskgen",
	Name:      "generation_duration_seconds",
	Help:      "Time taken to generate and verify the dataset",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 60},
})

// Observe records a finished run's dataset on the gauges.
func Observe(ds *types.Dataset, reassigned int) {
	RecordsTotal.WithLabelValues("users").Set(float64(len(ds.Agents)))
	RecordsTotal.WithLabelValues("customers").Set(float64(len(ds.Customers)))
	RecordsTotal.WithLabelValues("tickets").Set(float64(len(ds.Tickets)))
	RecordsTotal.WithLabelValues("interactions").Set(float64(len(ds.Interactions)))
	RecordsTotal.WithLabelValues("calls").Set(float64(len(ds.Calls)))
	RecordsTotal.WithLabelValues("chats").Set(float64(len(ds.Chats)))
	RecordsTotal.WithLabelValues("wfm").Set(float64(len(ds.WFM)))
	RecordsTotal.WithLabelValues("qa").Set(float64(len(ds.QA)))

	if len(ds.Tickets) > 0 {
		fcr := 0
		for _, t := range ds.Tickets {
			if t.FCR {
				fcr++
			}
		}
		FCRRate.Set(float64(fcr) / float64(len(ds.Tickets)))
	}

	AbandonmentRate.WithLabelValues("phone").Set(abandonmentRate(ds.Calls))
	AbandonmentRate.WithLabelValues("chat").Set(abandonmentRate(ds.Chats))
	ReassignedInteractions.Set(float64(reassigned))
}

// ResetGauges clears run-scoped gauges before a new generation run.
func ResetGauges() {
	RecordsTotal.Reset()
	FCRRate.Set(0)
	AbandonmentRate.Reset()
	ReassignedInteractions.Set(0)
}

func abandonmentRate(sessions []types.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	abandoned := 0
	for _, s := range sessions {
		if s.IsAbandoned {
			abandoned++
		}
	}
	return float64(abandoned) / float64(len(sessions))
}

// Package report prints a human-readable summary of a generated dataset so
// the realized distributions can be eyeballed against the configured ones.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/PSavvateev/cs-data-generator/internal/config"
	"github.com/PSavvateev/cs-data-generator/internal/types"
)

// Print writes the run summary to w.
func Print(w io.Writer, cfg *config.Config, ds *types.Dataset, reassigned int) {
	fmt.Fprintf(w, "\n=== dataset summary ===\n")
	fmt.Fprintf(w, "window        %s .. %s\n", cfg.StartDate.Format("2006-01-02"), cfg.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "agents        %d\n", len(ds.Agents))
	fmt.Fprintf(w, "customers     %d\n", len(ds.Customers))
	fmt.Fprintf(w, "tickets       %d\n", len(ds.Tickets))
	fmt.Fprintf(w, "interactions  %d\n", len(ds.Interactions))
	fmt.Fprintf(w, "wfm entries   %d (reassigned interactions: %d)\n", len(ds.WFM), reassigned)
	fmt.Fprintf(w, "qa reviews    %d\n", len(ds.QA))

	printFCR(w, cfg, ds.Tickets)
	printChannels(w, ds.Interactions)
	printSessions(w, "calls", ds.Calls)
	printSessions(w, "chats", ds.Chats)
	printWFM(w, ds.WFM)
	printQA(w, ds.QA)
}

func printFCR(w io.Writer, cfg *config.Config, tickets []types.Ticket) {
	total := make(map[string]int)
	fcr := make(map[string]int)
	for _, t := range tickets {
		total[t.SymptomCat]++
		if t.FCR {
			fcr[t.SymptomCat]++
		}
	}

	cats := make([]string, 0, len(total))
	for c := range total {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	fmt.Fprintf(w, "\nfcr rate by category (realized / target):\n")
	for _, c := range cats {
		realized := float64(fcr[c]) / float64(total[c])
		fmt.Fprintf(w, "  %-16s %.3f / %.3f  (%d tickets)\n", c, realized, cfg.FCRRates[c].Mean, total[c])
	}
}

func printChannels(w io.Writer, ins []types.Interaction) {
	count := make(map[types.Channel]int)
	handle := make(map[types.Channel]float64)
	speed := make(map[types.Channel]float64)
	for _, in := range ins {
		count[in.Channel]++
		handle[in.Channel] += float64(in.HandleTime)
		speed[in.Channel] += in.SpeedOfAnswer
	}

	fmt.Fprintf(w, "\ninteractions by channel:\n")
	for _, ch := range []types.Channel{types.ChannelEmail, types.ChannelPhone, types.ChannelChat} {
		n := count[ch]
		if n == 0 {
			continue
		}
		unit := "s"
		if ch == types.ChannelEmail {
			unit = "h"
		}
		fmt.Fprintf(w, "  %-6s %6d  avg handle %.1f min  avg answer %.1f%s\n",
			ch, n, handle[ch]/float64(n), speed[ch]/float64(n), unit)
	}
}

func printSessions(w io.Writer, name string, sessions []types.Session) {
	if len(sessions) == 0 {
		return
	}
	abandoned := 0
	var wait float64
	for _, s := range sessions {
		if s.IsAbandoned {
			abandoned++
			wait += s.WaitSeconds()
		}
	}
	rate := float64(abandoned) / float64(len(sessions))
	fmt.Fprintf(w, "\n%s: %d total, %d abandoned (%.1f%%)", name, len(sessions), abandoned, rate*100)
	if abandoned > 0 {
		fmt.Fprintf(w, ", avg wait before abandon %.0fs", wait/float64(abandoned))
	}
	fmt.Fprintln(w)
}

func printWFM(w io.Writer, entries []types.WFMEntry) {
	var available, interactions, productive int
	working := 0
	for _, e := range entries {
		if !e.WorkingDay {
			continue
		}
		working++
		available += e.AvailableTime
		interactions += e.InteractionsTime
		productive += e.ProductiveTime
	}
	if available == 0 {
		return
	}
	fmt.Fprintf(w, "\nwfm: %d working agent-days, occupancy %.1f%%, productive share %.1f%%\n",
		working,
		float64(interactions)/float64(available)*100,
		float64(productive)/float64(available)*100)
}

func printQA(w io.Writer, reviews []types.QAReview) {
	if len(reviews) == 0 {
		return
	}
	var sum float64
	critical := 0
	for _, q := range reviews {
		sum += q.Score
		if q.HasCriticalFlags() {
			critical++
		}
	}
	fmt.Fprintf(w, "\nqa: %d reviews, avg score %.2f, %d with critical flags\n",
		len(reviews), sum/float64(len(reviews)), critical)
}

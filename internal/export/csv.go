package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// WriteCSV writes every table of the dataset as a CSV file under dir. The
// files are staged in a temporary sibling directory and swapped in with a
// rename, so a failed run never leaves a half-written export behind.
func WriteCSV(ds *types.Dataset, dir string) error {
	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create export parent: %w", err)
	}
	stage, err := os.MkdirTemp(parent, ".deskgen-export-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	tables := []struct {
		name   string
		header []string
		rows   func() [][]string
	}{
		{"users_table.csv",
			[]string{"id", "full_name", "first_name", "last_name", "fte", "position", "start_date", "status", "hourly_rate_eur"},
			func() [][]string { return agentRows(ds.Agents) }},
		{"customers_table.csv",
			[]string{"customer_id", "name", "email", "phone", "country"},
			func() [][]string { return customerRows(ds.Customers) }},
		{"tickets_table.csv",
			[]string{"ticket_id", "origin", "symptom_cat", "symptom", "status", "product", "ticket_owner", "language", "fcr", "escalated", "ticket_created", "ticket_closed", "last_interaction_time", "resolution_after_last_interaction_hours", "lifecycle_hours"},
			func() [][]string { return ticketRows(ds.Tickets) }},
		{"interactions_table.csv",
			[]string{"interaction_id", "channel", "customer_id", "interaction_created", "handle_time", "speed_of_answer", "interaction_handled", "handled_by", "subject", "body", "ticket_id"},
			func() [][]string { return interactionRows(ds.Interactions) }},
		{"calls_table.csv", sessionHeader(), func() [][]string { return sessionRows(ds.Calls) }},
		{"chats_table.csv", sessionHeader(), func() [][]string { return sessionRows(ds.Chats) }},
		{"wfm_table.csv",
			[]string{"date", "user_id", "paid_time", "scheduled_time", "available_time", "interactions_time", "productive_time"},
			func() [][]string { return wfmRows(ds.WFM) }},
		{"qa_table.csv",
			[]string{"eval_id", "interaction_id", "qa_score", "customer_critical", "business_critical", "compliance_critical"},
			func() [][]string { return qaRows(ds.QA) }},
	}

	for _, t := range tables {
		if err := writeTable(filepath.Join(stage, t.name), t.header, t.rows()); err != nil {
			return fmt.Errorf("write %s: %w", t.name, err)
		}
	}

	// The previous export is moved aside, not deleted, until the new one is
	// in place, so a failed swap can roll back.
	backup := stage + ".old"
	hadPrevious := false
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, backup); err != nil {
			return fmt.Errorf("move previous export aside: %w", err)
		}
		hadPrevious = true
	}
	if err := os.Rename(stage, dir); err != nil {
		if hadPrevious {
			_ = os.Rename(backup, dir)
		}
		return fmt.Errorf("swap export dir: %w", err)
	}
	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("remove previous export: %w", err)
		}
	}
	return nil
}

func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func sessionHeader() []string {
	return []string{"id", "initialized", "answered", "abandoned", "is_abandoned"}
}

func agentRows(agents []types.Agent) [][]string {
	rows := make([][]string, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, []string{
			strconv.Itoa(a.ID),
			a.FullName,
			a.FirstName,
			a.LastName,
			formatFloat(a.FTE),
			a.Position,
			a.StartDate.Format(dateLayout),
			a.Status,
			formatFloat(a.HourlyRateEUR),
		})
	}
	return rows
}

func customerRows(customers []types.Customer) [][]string {
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			strconv.Itoa(c.ID), c.Name, c.Email, c.Phone, c.Country,
		})
	}
	return rows
}

func ticketRows(tickets []types.Ticket) [][]string {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			t.ID,
			string(t.Origin),
			t.SymptomCat,
			t.Symptom,
			string(t.Status),
			t.Product,
			strconv.Itoa(t.Owner),
			t.Language,
			formatBool(t.FCR),
			formatBool(t.Escalated),
			t.Created.Format(timestampLayout),
			formatTimePtr(t.Closed),
			formatTimePtr(t.LastInteraction),
			formatFloatPtr(t.ResolutionAfterLast),
			formatFloatPtr(t.LifecycleHours),
		})
	}
	return rows
}

func interactionRows(ins []types.Interaction) [][]string {
	rows := make([][]string, 0, len(ins))
	for _, in := range ins {
		rows = append(rows, []string{
			in.ID,
			string(in.Channel),
			strconv.Itoa(in.CustomerID),
			in.Created.Format(timestampLayout),
			strconv.Itoa(in.HandleTime),
			formatFloat(in.SpeedOfAnswer),
			in.Handled.Format(timestampLayout),
			strconv.Itoa(in.HandledBy),
			in.Subject,
			in.Body,
			in.TicketID,
		})
	}
	return rows
}

func sessionRows(sessions []types.Session) [][]string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.Initialized.Format(timestampLayout),
			formatTimePtr(s.Answered),
			formatTimePtr(s.Abandoned),
			formatBool(s.IsAbandoned),
		})
	}
	return rows
}

func wfmRows(entries []types.WFMEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Date.Format(dateLayout),
			strconv.Itoa(e.AgentID),
			strconv.Itoa(e.PaidTime),
			strconv.Itoa(e.ScheduledTime),
			strconv.Itoa(e.AvailableTime),
			strconv.Itoa(e.InteractionsTime),
			strconv.Itoa(e.ProductiveTime),
		})
	}
	return rows
}

func qaRows(reviews []types.QAReview) [][]string {
	rows := make([][]string, 0, len(reviews))
	for _, q := range reviews {
		rows = append(rows, []string{
			q.ID,
			q.InteractionID,
			formatFloat(q.Score),
			formatBool(q.CustomerCritical),
			formatBool(q.BusinessCritical),
			formatBool(q.ComplianceCritical),
		})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

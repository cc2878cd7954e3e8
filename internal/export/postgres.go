package export

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/PSavvateev/cs-data-generator/internal/types"
)

var validSchema = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresSink loads a dataset into Postgres. Every run gets a fresh uuid
// tag, so multiple generations can coexist in one schema.
type PostgresSink struct {
	url    string
	schema string
	log    zerolog.Logger
}

// NewPostgresSink creates a PostgresSink for the given connection URL and
// schema name.
func NewPostgresSink(url, schema string, log zerolog.Logger) (*PostgresSink, error) {
	schema = strings.TrimSpace(schema)
	if !validSchema.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}
	return &PostgresSink{url: url, schema: schema, log: log}, nil
}

// Store writes the whole dataset in one transaction.
func (p *PostgresSink) Store(ctx context.Context, ds *types.Dataset) error {
	db, err := sql.Open("pgx", p.url)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := p.ensureSchema(ctx, db); err != nil {
		return err
	}

	runID := uuid.New()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = p.insertAll(ctx, tx, runID, ds); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.log.Info().Str("run_id", runID.String()).Str("schema", p.schema).Msg("dataset stored in postgres")
	return nil
}

func (p *PostgresSink) ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.users (
			run_id UUID NOT NULL,
			id INT NOT NULL,
			full_name TEXT NOT NULL,
			fte DOUBLE PRECISION NOT NULL,
			position TEXT NOT NULL,
			start_date DATE NOT NULL,
			status TEXT NOT NULL,
			hourly_rate_eur DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.customers (
			run_id UUID NOT NULL,
			customer_id INT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			country TEXT NOT NULL,
			PRIMARY KEY (run_id, customer_id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.tickets (
			run_id UUID NOT NULL,
			ticket_id TEXT NOT NULL,
			origin TEXT NOT NULL,
			symptom_cat TEXT NOT NULL,
			symptom TEXT NOT NULL,
			status TEXT NOT NULL,
			product TEXT NOT NULL,
			ticket_owner INT NOT NULL,
			language TEXT NOT NULL,
			fcr BOOLEAN NOT NULL,
			escalated BOOLEAN NOT NULL,
			ticket_created TIMESTAMP NOT NULL,
			ticket_closed TIMESTAMP,
			last_interaction_time TIMESTAMP,
			resolution_after_last_interaction_hours DOUBLE PRECISION,
			lifecycle_hours DOUBLE PRECISION,
			PRIMARY KEY (run_id, ticket_id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.interactions (
			run_id UUID NOT NULL,
			interaction_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			customer_id INT NOT NULL,
			ticket_id TEXT NOT NULL,
			handled_by INT NOT NULL,
			interaction_created TIMESTAMP NOT NULL,
			interaction_handled TIMESTAMP NOT NULL,
			handle_time INT NOT NULL,
			speed_of_answer DOUBLE PRECISION NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (run_id, interaction_id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sessions (
			run_id UUID NOT NULL,
			id TEXT NOT NULL,
			channel TEXT NOT NULL,
			initialized TIMESTAMP NOT NULL,
			answered TIMESTAMP,
			abandoned TIMESTAMP,
			is_abandoned BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.wfm (
			run_id UUID NOT NULL,
			date DATE NOT NULL,
			user_id INT NOT NULL,
			paid_time INT NOT NULL,
			scheduled_time INT NOT NULL,
			available_time INT NOT NULL,
			interactions_time INT NOT NULL,
			productive_time INT NOT NULL,
			PRIMARY KEY (run_id, date, user_id)
		)`, p.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.qa (
			run_id UUID NOT NULL,
			eval_id TEXT NOT NULL,
			interaction_id TEXT NOT NULL,
			qa_score DOUBLE PRECISION NOT NULL,
			customer_critical BOOLEAN NOT NULL,
			business_critical BOOLEAN NOT NULL,
			compliance_critical BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, eval_id)
		)`, p.schema),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresSink) insertAll(ctx context.Context, tx *sql.Tx, runID uuid.UUID, ds *types.Dataset) error {
	for _, a := range ds.Agents {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.users (run_id, id, full_name, fte, position, start_date, status, hourly_rate_eur)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, p.schema),
			runID, a.ID, a.FullName, a.FTE, a.Position, a.StartDate, a.Status, a.HourlyRateEUR)
		if err != nil {
			return fmt.Errorf("insert user %d: %w", a.ID, err)
		}
	}
	for _, c := range ds.Customers {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.customers (run_id, customer_id, name, email, phone, country)
			VALUES ($1,$2,$3,$4,$5,$6)`, p.schema),
			runID, c.ID, c.Name, c.Email, c.Phone, c.Country)
		if err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
	}
	for _, t := range ds.Tickets {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.tickets (run_id, ticket_id, origin, symptom_cat, symptom, status, product,
				ticket_owner, language, fcr, escalated, ticket_created, ticket_closed,
				last_interaction_time, resolution_after_last_interaction_hours, lifecycle_hours)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`, p.schema),
			runID, t.ID, string(t.Origin), t.SymptomCat, t.Symptom, string(t.Status), t.Product,
			t.Owner, t.Language, t.FCR, t.Escalated, t.Created, t.Closed,
			t.LastInteraction, t.ResolutionAfterLast, t.LifecycleHours)
		if err != nil {
			return fmt.Errorf("insert ticket %s: %w", t.ID, err)
		}
	}
	for _, in := range ds.Interactions {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.interactions (run_id, interaction_id, channel, customer_id, ticket_id,
				handled_by, interaction_created, interaction_handled, handle_time, speed_of_answer, subject, body)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`, p.schema),
			runID, in.ID, string(in.Channel), in.CustomerID, in.TicketID,
			in.HandledBy, in.Created, in.Handled, in.HandleTime, in.SpeedOfAnswer, in.Subject, in.Body)
		if err != nil {
			return fmt.Errorf("insert interaction %s: %w", in.ID, err)
		}
	}
	if err := p.insertSessions(ctx, tx, runID, "phone", ds.Calls); err != nil {
		return err
	}
	if err := p.insertSessions(ctx, tx, runID, "chat", ds.Chats); err != nil {
		return err
	}
	for _, e := range ds.WFM {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.wfm (run_id, date, user_id, paid_time, scheduled_time, available_time, interactions_time, productive_time)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, p.schema),
			runID, e.Date, e.AgentID, e.PaidTime, e.ScheduledTime, e.AvailableTime, e.InteractionsTime, e.ProductiveTime)
		if err != nil {
			return fmt.Errorf("insert wfm entry %d/%s: %w", e.AgentID, e.Date.Format("2006-01-02"), err)
		}
	}
	for _, q := range ds.QA {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.qa (run_id, eval_id, interaction_id, qa_score, customer_critical, business_critical, compliance_critical)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`, p.schema),
			runID, q.ID, q.InteractionID, q.Score, q.CustomerCritical, q.BusinessCritical, q.ComplianceCritical)
		if err != nil {
			return fmt.Errorf("insert qa review %s: %w", q.ID, err)
		}
	}
	return nil
}

func (p *PostgresSink) insertSessions(ctx context.Context, tx *sql.Tx, runID uuid.UUID, channel string, sessions []types.Session) error {
	for _, s := range sessions {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s.sessions (run_id, id, channel, initialized, answered, abandoned, is_abandoned)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`, p.schema),
			runID, s.ID, channel, s.Initialized, s.Answered, s.Abandoned, s.IsAbandoned)
		if err != nil {
			return fmt.Errorf("insert session %s: %w", s.ID, err)
		}
	}
	return nil
}

package types

import "time"

// Channel represents a customer contact channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
	ChannelChat  Channel = "chat"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusNew    TicketStatus = "new"
	StatusOpen   TicketStatus = "open"
	StatusClosed TicketStatus = "closed"
)

// ClosureAnchor selects the reference timestamp for closure delay.
type ClosureAnchor string

const (
	AnchorLastInteraction ClosureAnchor = "last_interaction"
	AnchorFromCreation    ClosureAnchor = "from_creation"
)

// Agent represents a support agent on the roster.
type Agent struct {
	ID            int
	FullName      string
	FirstName     string
	LastName      string
	FTE           float64
	Position      string
	StartDate     time.Time
	Status        string
	HourlyRateEUR float64
}

// Customer represents a customer on the roster.
type Customer struct {
	ID       int
	Name     string
	Email    string
	Phone    string
	Country  string
	Language string
}

// Ticket represents a support case. Closed, LastInteraction and the derived
// duration fields are nil until the correlator resolves them.
type Ticket struct {
	ID                  string
	Origin              Channel
	SymptomCat          string
	Symptom             string
	Status              TicketStatus
	Product             string
	Owner               int
	Language            string
	FCR                 bool
	Escalated           bool
	Created             time.Time
	Closed              *time.Time
	LastInteraction     *time.Time
	ResolutionAfterLast *float64 // hours between last interaction and closure
	LifecycleHours      *float64 // hours between creation and closure
}

// IsClosed reports whether the ticket reached closure inside the data window.
func (t *Ticket) IsClosed() bool { return t.Status == StatusClosed }

// Interaction represents one customer contact belonging to a ticket.
// HandleTime is whole minutes; SpeedOfAnswer is hours for email and seconds
// for phone and chat.
type Interaction struct {
	ID            string
	Channel       Channel
	CustomerID    int
	TicketID      string
	HandledBy     int
	Created       time.Time
	Handled       time.Time
	HandleTime    int
	SpeedOfAnswer float64
	Subject       string
	Body          string
}

// Session represents a call or chat stream record. Exactly one of Answered
// and Abandoned is non-nil.
type Session struct {
	ID          string
	Initialized time.Time
	Answered    *time.Time
	Abandoned   *time.Time
	IsAbandoned bool
}

// WaitSeconds returns the wait before abandonment, zero for answered sessions.
func (s *Session) WaitSeconds() float64 {
	if !s.IsAbandoned || s.Abandoned == nil {
		return 0
	}
	return s.Abandoned.Sub(s.Initialized).Seconds()
}

// WFMEntry holds the per-agent, per-day time budget in whole minutes.
// Non-working days carry zeroes in all minute fields.
type WFMEntry struct {
	Date             time.Time
	AgentID          int
	PaidTime         int
	ScheduledTime    int
	AvailableTime    int
	InteractionsTime int
	ProductiveTime   int
	WorkingDay       bool
}

// QAReview represents a quality evaluation of a sampled interaction.
type QAReview struct {
	ID                 string
	InteractionID      string
	Score              float64
	CustomerCritical   bool
	BusinessCritical   bool
	ComplianceCritical bool
}

// HasCriticalFlags reports whether any critical flag is set.
func (q *QAReview) HasCriticalFlags() bool {
	return q.CustomerCritical || q.BusinessCritical || q.ComplianceCritical
}

// Dataset is the full immutable snapshot of one generation run.
type Dataset struct {
	Agents       []Agent
	Customers    []Customer
	Tickets      []Ticket
	Interactions []Interaction
	Calls        []Session
	Chats        []Session
	WFM          []WFMEntry
	QA           []QAReview
}

package models

import "time"

// Step is a position in the service-intake chat flow
type Step string

// Flow order: ask_name -> ask_email (new customers only) -> ask_issue -> ask_model ->
// ask_address -> ask_date -> ask_time -> ticket created, session cleared.
const (
	StepNone       Step = ""
	StepAskName    Step = "ask_name"
	StepAskEmail   Step = "ask_email"
	StepAskIssue   Step = "ask_issue"
	StepAskModel   Step = "ask_model"
	StepAskAddress Step = "ask_address"
	StepAskDate    Step = "ask_date"
	StepAskTime    Step = "ask_time"
)

// Steps lists every recognized step in flow order
var Steps = []Step{
	StepAskName,
	StepAskEmail,
	StepAskIssue,
	StepAskModel,
	StepAskAddress,
	StepAskDate,
	StepAskTime,
}

// Valid reports whether s is a recognized step
func (s Step) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// RegistrationData is collected while registering a new customer
type RegistrationData struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	ProfileName string `json:"profile_name,omitempty"` // WhatsApp display name, memo only
}

// TicketData is collected while booking a service visit
type TicketData struct {
	Issue         string `json:"issue,omitempty"`
	Model         string `json:"model,omitempty"`
	Address       string `json:"address,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
}

// Session is the transient per-sender conversation state
type Session struct {
	Step             Step              `json:"step"`
	CustomerID       string            `json:"customer_id,omitempty"`
	CustomerName     string            `json:"customer_name,omitempty"`
	RegistrationData *RegistrationData `json:"registration_data,omitempty"`
	TicketData       *TicketData       `json:"ticket_data,omitempty"`
	LastActivity     time.Time         `json:"last_activity"`
}

// Started reports whether the session is positioned inside the flow.
// A session without a step counts as no session at all.
func (s *Session) Started() bool {
	return s != nil && s.Step != StepNone
}

// Clone returns a deep copy so stores never hand out shared nested data
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.RegistrationData != nil {
		reg := *s.RegistrationData
		c.RegistrationData = &reg
	}
	if s.TicketData != nil {
		td := *s.TicketData
		c.TicketData = &td
	}
	return &c
}

// SessionPatch is a shallow update. Nil fields are left alone; non-nil nested
// data replaces the existing value wholesale, so callers pass the full object.
type SessionPatch struct {
	Step             *Step
	CustomerID       *string
	CustomerName     *string
	RegistrationData *RegistrationData
	TicketData       *TicketData
}

// Apply merges the patch over the session
func (s *Session) Apply(p SessionPatch) {
	if p.Step != nil {
		s.Step = *p.Step
	}
	if p.CustomerID != nil {
		s.CustomerID = *p.CustomerID
	}
	if p.CustomerName != nil {
		s.CustomerName = *p.CustomerName
	}
	if p.RegistrationData != nil {
		reg := *p.RegistrationData
		s.RegistrationData = &reg
	}
	if p.TicketData != nil {
		td := *p.TicketData
		s.TicketData = &td
	}
}

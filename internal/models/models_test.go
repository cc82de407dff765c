package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepValid(t *testing.T) {
	for _, step := range Steps {
		assert.True(t, step.Valid(), step)
	}
	assert.False(t, StepNone.Valid())
	assert.False(t, Step("ask_favourite_colour").Valid())
}

func TestSessionStarted(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Started())
	assert.False(t, (&Session{CustomerID: "CUS1"}).Started())
	assert.True(t, (&Session{Step: StepAskIssue}).Started())
}

func TestSessionApplyReplacesNestedData(t *testing.T) {
	s := &Session{
		Step:       StepAskModel,
		CustomerID: "CUS1",
		TicketData: &TicketData{Issue: "Leak", Model: "old"},
	}

	next := StepAskAddress
	patch := SessionPatch{Step: &next, TicketData: &TicketData{Issue: "Leak", Model: "Z-100"}}
	s.Apply(patch)

	assert.Equal(t, StepAskAddress, s.Step)
	assert.Equal(t, "CUS1", s.CustomerID)
	assert.Equal(t, "Z-100", s.TicketData.Model)

	// the session must not alias the caller's patch
	patch.TicketData.Model = "changed"
	assert.Equal(t, "Z-100", s.TicketData.Model)
}

func TestSessionClone(t *testing.T) {
	s := &Session{Step: StepAskEmail, RegistrationData: &RegistrationData{Name: "Jo"}}
	c := s.Clone()
	c.RegistrationData.Name = "Changed"

	assert.Equal(t, "Jo", s.RegistrationData.Name)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestEnsureDefaults(t *testing.T) {
	c := &Customer{Name: "  Jo ", Email: " JO@X.COM "}
	c.EnsureDefaults()
	assert.Equal(t, "Jo", c.Name)
	assert.Equal(t, "jo@x.com", c.Email)
	assert.NotEmpty(t, c.CustomerID)

	tk := &Ticket{}
	tk.EnsureDefaults()
	assert.Equal(t, TicketStatusBooked, tk.Status)
	assert.Regexp(t, `^ZW-`, tk.TicketID)
	assert.True(t, ValidTicketStatus(tk.Status))
	assert.False(t, ValidTicketStatus("lost"))
}

func TestTicketBeforeCreateRejectsUnknownStatus(t *testing.T) {
	cases := []struct {
		status string
		valid  bool
	}{
		{"", true}, // defaults to booked
		{TicketStatusBooked, true},
		{TicketStatusInProgress, true},
		{TicketStatusCompleted, true},
		{TicketStatusCancelled, true},
		{"lost", false},
		{"Booked", false},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			err := (&Ticket{Status: tc.status}).BeforeCreate(nil)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTicketStatus)
			}
		})
	}
}

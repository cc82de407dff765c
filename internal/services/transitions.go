package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// transition describes one step of the flow: how its input is validated,
// what to say when it is not, and how a valid value advances the session.
// Apply runs only after Validate accepted the input; on any failure it must
// leave the session untouched and return a reply that keeps the sender on
// the same step.
type transition struct {
	Next     models.Step
	Validate func(input string) (value string, ok bool)
	Empty    string
	Invalid  string
	Apply    func(ctx context.Context, phone string, s *models.Session, value string, next models.Step) string
}

func minLength(n int) func(string) (string, bool) {
	return func(input string) (string, bool) {
		value := strings.TrimSpace(input)
		return value, utf8.RuneCountInString(value) >= n
	}
}

func validEmail(input string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(input))
	return value, emailPattern.MatchString(value)
}

// newTransitions builds the transition table for the service-intake flow
func (f *ChatFlowService) newTransitions() map[models.Step]transition {
	return map[models.Step]transition{
		models.StepAskName: {
			Next:     models.StepAskEmail,
			Validate: minLength(2),
			Empty:    MsgEmptyName,
			Invalid:  MsgInvalidName,
			Apply:    f.applyName,
		},
		models.StepAskEmail: {
			Next:     models.StepAskIssue,
			Validate: validEmail,
			Empty:    MsgEmptyEmail,
			Invalid:  MsgInvalidEmail,
			Apply:    f.applyEmail,
		},
		models.StepAskIssue: {
			Next:     models.StepAskModel,
			Validate: minLength(3),
			Empty:    MsgEmptyIssue,
			Invalid:  MsgInvalidIssue,
			Apply: f.collectTicketField(MsgAskModel, func(td *models.TicketData, v string) {
				td.Issue = v
			}),
		},
		models.StepAskModel: {
			Next:     models.StepAskAddress,
			Validate: minLength(2),
			Empty:    MsgEmptyModel,
			Invalid:  MsgInvalidModel,
			Apply: f.collectTicketField(MsgAskAddress, func(td *models.TicketData, v string) {
				td.Model = v
			}),
		},
		models.StepAskAddress: {
			Next:     models.StepAskDate,
			Validate: minLength(10),
			Empty:    MsgEmptyAddress,
			Invalid:  MsgInvalidAddress,
			Apply: f.collectTicketField(MsgAskDate, func(td *models.TicketData, v string) {
				td.Address = v
			}),
		},
		models.StepAskDate: {
			// No calendar validation: the date is advisory text for the technician
			Next:     models.StepAskTime,
			Validate: minLength(8),
			Empty:    MsgEmptyDate,
			Invalid:  MsgInvalidDate,
			Apply: f.collectTicketField(MsgAskTime, func(td *models.TicketData, v string) {
				td.PreferredDate = v
			}),
		},
		models.StepAskTime: {
			Next:     models.StepNone,
			Validate: minLength(2),
			Empty:    MsgEmptyTime,
			Invalid:  MsgInvalidTime,
			Apply:    f.applyTime,
		},
	}
}

package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewTicketReference returns a short public ticket reference such as ZW-1A2B3C4D
func NewTicketReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ZW-" + strings.ToUpper(id[:8])
}

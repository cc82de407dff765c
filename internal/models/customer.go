package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer is a registered Zoss Water purifier owner
type Customer struct {
	// Using gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt automatically
	gorm.Model

	CustomerID string `json:"customer_id" gorm:"uniqueIndex"`
	Name       string `json:"name" gorm:"not null"`
	Email      string `json:"email" gorm:"uniqueIndex;not null"`
	Phone      string `json:"phone" gorm:"uniqueIndex;not null"` // WhatsApp number, the sender identifier
	Address    string `json:"address"`                           // Optional at registration
}

// CustomerRegistration carries the fields collected by the chat flow
type CustomerRegistration struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// BeforeCreate hook to auto-generate CustomerID and normalize data
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.EnsureDefaults()
	return nil
}

// EnsureDefaults fills in the generated fields. Stores that bypass gorm call it directly.
func (c *Customer) EnsureDefaults() {
	if c.CustomerID == "" {
		c.CustomerID = fmt.Sprintf("CUS%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

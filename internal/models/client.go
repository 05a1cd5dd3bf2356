// internal/models/client.go
package models

import "time"

// Client is the billed party an invoice is addressed to.
type Client struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is the tenant owning invoices, clients and settings.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	CompanyName string    `json:"companyName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SenderName returns the name follow-up messages are signed with.
func (a Account) SenderName() string {
	if a.CompanyName != "" {
		return a.CompanyName
	}
	return a.Email
}

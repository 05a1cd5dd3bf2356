// internal/models/invoice.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusUnpaid  InvoiceStatus = "unpaid"
	StatusOverdue InvoiceStatus = "overdue"
	StatusPartial InvoiceStatus = "partial"
)

// InvoiceSource records where an invoice came from.
type InvoiceSource string

const (
	SourceManual InvoiceSource = "manual"
	SourceStripe InvoiceSource = "stripe"
	SourceAPI    InvoiceSource = "api"
)

// Invoice is an outstanding receivable tracked for follow-up. Stage is
// monotonically non-decreasing while the invoice is unpaid; it is only
// advanced by the processor after at least one channel delivery succeeds.
type Invoice struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"ownerId"`
	ClientID           string          `json:"clientId"`
	Amount             decimal.Decimal `json:"amount"`
	DueDate            time.Time       `json:"dueDate"` // calendar date, midnight UTC
	Status             InvoiceStatus   `json:"status"`
	Source             InvoiceSource   `json:"source"`
	Stage              int             `json:"stage"` // 0 = no follow-up sent yet
	EscalationLevel    int             `json:"escalationLevel"`
	LastFollowUpSentAt *time.Time      `json:"lastFollowUpSentAt,omitempty"`
	RecoveredAt        *time.Time      `json:"recoveredAt,omitempty"`
	InvoiceNumber      string          `json:"invoiceNumber,omitempty"`
	Description        string          `json:"description,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`

	// Joined rows, populated by the candidate fetch.
	Client *Client  `json:"client,omitempty"`
	Owner  *Account `json:"owner,omitempty"`
}

// Number returns the display number for the invoice, falling back to the
// first 8 characters of the id when none was assigned.
func (i Invoice) Number() string {
	if i.InvoiceNumber != "" {
		return i.InvoiceNumber
	}
	if len(i.ID) > 8 {
		return i.ID[:8]
	}
	return i.ID
}

// DaysOverdue returns whole days past the due date at the given instant,
// rounding partial days up. Zero or negative means not yet overdue.
func (i Invoice) DaysOverdue(now time.Time) int {
	diff := now.Sub(i.DueDate)
	days := int(diff.Hours() / 24)
	if diff > time.Duration(days)*24*time.Hour {
		days++
	}
	return days
}

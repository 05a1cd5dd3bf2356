// internal/followup/store/store.go
package store

import (
	"context"
	"time"

	"invoice-recovery/internal/models"
)

// InvoicePatch is the mutation applied after at least one channel delivered.
type InvoicePatch struct {
	Stage              int
	EscalationLevel    int
	LastFollowUpSentAt time.Time
	Status             models.InvoiceStatus
}

// Store is the persistence port the processor runs against. The processor
// never touches the storage medium directly.
type Store interface {
	// FetchOverdueInvoices returns unpaid/overdue/partial invoices whose due
	// date has passed, with client and owner rows joined.
	FetchOverdueInvoices(ctx context.Context) ([]models.Invoice, error)

	// FetchOwnerSettings returns the automation settings for one owner.
	FetchOwnerSettings(ctx context.Context, ownerID string) (*models.OwnerSettings, error)

	// AppendFollowUpLog records one successful delivery. Append-only.
	AppendFollowUpLog(ctx context.Context, entry models.FollowUpLog) error

	// MutateInvoice applies the post-send patch to one invoice.
	MutateInvoice(ctx context.Context, id string, patch InvoicePatch) error
}

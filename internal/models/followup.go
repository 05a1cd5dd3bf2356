// internal/models/followup.go
package models

import "time"

// FollowUpLog is an append-only record of one delivered reminder on one
// channel. Never mutated or deleted.
type FollowUpLog struct {
	ID          string              `json:"id"`
	InvoiceID   string              `json:"invoiceId"`
	Stage       int                 `json:"stage"`
	MessageSent string              `json:"messageSent"`
	Channel     NotificationChannel `json:"channel"`
	SentAt      time.Time           `json:"sentAt"`
}

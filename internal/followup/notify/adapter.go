// internal/followup/notify/adapter.go
package notify

import (
	"context"

	"invoice-recovery/internal/models"
)

// Payload is the rendered message handed to a channel adapter.
type Payload struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	InvoiceID  string `json:"invoiceId"`
	ClientName string `json:"clientName"`
}

// Result is the uniform outcome of one delivery attempt. Send never returns
// a Go error; every failure is captured here so one channel cannot abort the
// others.
type Result struct {
	Channel   models.NotificationChannel `json:"channel"`
	Success   bool                       `json:"success"`
	MessageID string                     `json:"messageId,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// Adapter is a delivery channel. Exactly three variants exist: email, sms
// and whatsapp. An adapter with missing credentials reports unconfigured and
// fails sends immediately without attempting delivery.
type Adapter interface {
	Channel() models.NotificationChannel
	IsConfigured() bool
	Send(ctx context.Context, payload Payload) Result
}

// Registry maps each known channel to its adapter.
func Registry(email, sms, whatsapp Adapter) map[models.NotificationChannel]Adapter {
	return map[models.NotificationChannel]Adapter{
		models.ChannelEmail:    email,
		models.ChannelSMS:      sms,
		models.ChannelWhatsApp: whatsapp,
	}
}

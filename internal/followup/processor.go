// internal/followup/processor.go
package followup

import (
	"context"
	"fmt"
	"time"

	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/common/metrics"
	"invoice-recovery/internal/followup/notify"
	"invoice-recovery/internal/followup/stage"
	followupstore "invoice-recovery/internal/followup/store"
	"invoice-recovery/internal/followup/template"
	"invoice-recovery/internal/models"
)

// Result aggregates one processor pass.
type Result struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Skipped   int      `json:"skipped"`
	Errors    int      `json:"errors"`
	Details   []Detail `json:"details"`
}

// Detail is the per-invoice trail entry.
type Detail struct {
	InvoiceID string `json:"invoiceId"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Processor walks overdue invoices and drives the decision, rendering and
// dispatch pipeline. Each invoice is handled as one unit: its channel
// fan-out completes before its stage is advanced, so a crashed run can be
// re-invoked safely.
type Processor struct {
	store       followupstore.Store
	adapters    map[models.NotificationChannel]notify.Adapter
	logger      logger.Logger
	sendTimeout time.Duration
	now         func() time.Time
}

func NewProcessor(store followupstore.Store, adapters map[models.NotificationChannel]notify.Adapter, log logger.Logger, sendTimeout time.Duration) *Processor {
	return &Processor{
		store:       store,
		adapters:    adapters,
		logger:      log.WithFields(map[string]interface{}{"component": "processor"}),
		sendTimeout: sendTimeout,
		now:         time.Now,
	}
}

// WithClock overrides the time source (tests).
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Process runs one full pass. Per-invoice failures are counted and recorded
// in the detail trail; the only aborting failure is the candidate fetch.
func (p *Processor) Process(ctx context.Context) (*Result, error) {
	result := &Result{Details: []Detail{}}
	start := p.now()

	p.logger.Info("starting follow-up processing", map[string]interface{}{
		"at": start.UTC().Format(time.RFC3339),
	})

	invoices, err := p.store.FetchOverdueInvoices(ctx)
	if err != nil {
		p.logger.Error("failed to fetch overdue invoices", map[string]interface{}{
			"error": err.Error(),
		})
		return result, err
	}

	if len(invoices) == 0 {
		p.logger.Info("no overdue invoices found", nil)
		return result, nil
	}

	p.logger.Info("found overdue invoices", map[string]interface{}{
		"count": len(invoices),
	})

	for i := range invoices {
		p.processInvoice(ctx, &invoices[i], result)
	}

	metrics.RunDuration.Observe(p.now().Sub(start).Seconds())

	p.logger.Info("follow-up processing completed", map[string]interface{}{
		"processed": result.Processed,
		"sent":      result.Sent,
		"skipped":   result.Skipped,
		"errors":    result.Errors,
	})

	return result, nil
}

func (p *Processor) processInvoice(ctx context.Context, invoice *models.Invoice, result *Result) {
	result.Processed++

	settings, err := p.store.FetchOwnerSettings(ctx, invoice.OwnerID)
	if err != nil {
		result.Errors++
		metrics.InvoicesProcessed.WithLabelValues("error").Inc()
		result.Details = append(result.Details, Detail{
			InvoiceID: invoice.ID,
			Action:    "Error - failed to load owner settings",
			Success:   false,
			Error:     err.Error(),
		})
		return
	}

	if settings == nil || !settings.AutomationEnabled {
		result.Skipped++
		metrics.InvoicesProcessed.WithLabelValues("skipped").Inc()
		result.Details = append(result.Details, Detail{
			InvoiceID: invoice.ID,
			Action:    "Skipped - automation disabled",
			Success:   true,
		})
		return
	}

	now := p.now()
	daysOverdue := invoice.DaysOverdue(now)
	decision := stage.Decide(now, daysOverdue, invoice.Stage, invoice.LastFollowUpSentAt, settings.FollowUpIntervalHours)

	if !decision.ShouldSend || decision.Stage == nil {
		result.Skipped++
		metrics.InvoicesProcessed.WithLabelValues("skipped").Inc()
		result.Details = append(result.Details, Detail{
			InvoiceID: invoice.ID,
			Action:    fmt.Sprintf("Skipped - %s", decision.Reason),
			Success:   true,
		})
		return
	}

	client := invoice.Client
	owner := invoice.Owner
	if client == nil || owner == nil {
		result.Errors++
		metrics.InvoicesProcessed.WithLabelValues("error").Inc()
		result.Details = append(result.Details, Detail{
			InvoiceID: invoice.ID,
			Action:    "Error - missing client or owner data",
			Success:   false,
		})
		return
	}

	data := template.Data{
		ClientName:    client.Name,
		CompanyName:   owner.SenderName(),
		InvoiceNumber: invoice.Number(),
		Amount:        invoice.Amount,
		DueDate:       invoice.DueDate,
		DaysOverdue:   daysOverdue,
	}

	// Rendered once; shared across channels.
	subject := template.Subject(decision.Stage, data)
	body := template.Body(decision.Stage, settings.TonePreference, data)

	anySent := false
	for _, channel := range settings.EnabledChannels {
		adapter, ok := p.adapters[channel]
		if !ok || !adapter.IsConfigured() {
			continue
		}

		payload := notify.Payload{
			To:         p.recipientAddress(channel, client),
			Subject:    subject,
			Body:       body,
			InvoiceID:  invoice.ID,
			ClientName: client.Name,
		}

		sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
		sendResult := adapter.Send(sendCtx, payload)
		cancel()

		if sendResult.Success {
			anySent = true
			metrics.MessagesSent.WithLabelValues(string(channel), fmt.Sprintf("%d", decision.Stage.Stage)).Inc()

			if err := p.store.AppendFollowUpLog(ctx, models.FollowUpLog{
				InvoiceID:   invoice.ID,
				Stage:       decision.Stage.Stage,
				MessageSent: body,
				Channel:     channel,
				SentAt:      p.now().UTC(),
			}); err != nil {
				p.logger.Error("failed to append follow-up log", map[string]interface{}{
					"invoiceId": invoice.ID,
					"channel":   string(channel),
					"error":     err.Error(),
				})
			}
		} else {
			metrics.ChannelFailures.WithLabelValues(string(channel)).Inc()
			p.logger.Error("channel send failed", map[string]interface{}{
				"invoiceId": invoice.ID,
				"channel":   string(channel),
				"error":     sendResult.Error,
			})
		}
	}

	if !anySent {
		result.Errors++
		metrics.InvoicesProcessed.WithLabelValues("error").Inc()
		result.Details = append(result.Details, Detail{
			InvoiceID: invoice.ID,
			Action:    "Error - no channels succeeded",
			Success:   false,
		})
		return
	}

	status := invoice.Status
	if daysOverdue >= 1 && status != models.StatusPaid {
		status = models.StatusOverdue
	}

	patch := followupstore.InvoicePatch{
		Stage:              decision.Stage.Stage,
		EscalationLevel:    decision.Stage.EscalationLevel,
		LastFollowUpSentAt: p.now().UTC(),
		Status:             status,
	}
	if err := p.store.MutateInvoice(ctx, invoice.ID, patch); err != nil {
		p.logger.Error("failed to update invoice after send", map[string]interface{}{
			"invoiceId": invoice.ID,
			"error":     err.Error(),
		})
	}

	result.Sent++
	metrics.InvoicesProcessed.WithLabelValues("sent").Inc()
	result.Details = append(result.Details, Detail{
		InvoiceID: invoice.ID,
		Action:    fmt.Sprintf("Sent stage %d: %s", decision.Stage.Stage, decision.Stage.Name),
		Success:   true,
	})
}

// recipientAddress picks the delivery address for a channel. SMS and
// WhatsApp fall back to the client's email when no phone is on file,
// preserving the product's existing behavior.
func (p *Processor) recipientAddress(channel models.NotificationChannel, client *models.Client) string {
	if channel == models.ChannelEmail {
		return client.Email
	}
	if client.Phone != "" {
		return client.Phone
	}
	return client.Email
}

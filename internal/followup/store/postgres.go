// internal/followup/store/postgres.go
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"

	stderrors "invoice-recovery/internal/common/errors"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresStore implements Store on top of database/sql. Follow-up log
// entries are additionally indexed into Elasticsearch (best effort) to feed
// the admin log search view.
type PostgresStore struct {
	db       *sql.DB
	es       *elasticsearch.Client
	logIndex string
	logger   logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// WithLogIndex enables Elasticsearch indexing of follow-up log entries.
func (s *PostgresStore) WithLogIndex(es *elasticsearch.Client, index string) *PostgresStore {
	s.es = es
	s.logIndex = index
	return s
}

const fetchOverdueQuery = `
	SELECT i.id, i.owner_id, i.client_id, i.amount, i.due_date, i.status,
	       i.source, i.stage, i.escalation_level, i.last_follow_up_sent_at,
	       i.invoice_number, i.description,
	       c.id, c.name, c.email, c.phone,
	       a.id, a.email, a.company_name
	FROM invoices i
	LEFT JOIN clients c ON c.id = i.client_id
	LEFT JOIN accounts a ON a.id = i.owner_id
	WHERE i.status IN ('unpaid', 'overdue', 'partial')
	  AND i.due_date <= CURRENT_DATE
	ORDER BY i.due_date ASC`

func (s *PostgresStore) FetchOverdueInvoices(ctx context.Context) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, fetchOverdueQuery)
	if err != nil {
		return nil, stderrors.NewInvoiceFetchFailedError(err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var (
			inv           models.Invoice
			amount        string
			lastSentAt    sql.NullTime
			invoiceNumber sql.NullString
			description   sql.NullString
			clientID      sql.NullString
			clientName    sql.NullString
			clientEmail   sql.NullString
			clientPhone   sql.NullString
			ownerID       sql.NullString
			ownerEmail    sql.NullString
			ownerCompany  sql.NullString
		)

		err := rows.Scan(
			&inv.ID, &inv.OwnerID, &inv.ClientID, &amount, &inv.DueDate,
			&inv.Status, &inv.Source, &inv.Stage, &inv.EscalationLevel,
			&lastSentAt, &invoiceNumber, &description,
			&clientID, &clientName, &clientEmail, &clientPhone,
			&ownerID, &ownerEmail, &ownerCompany,
		)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("fetch_overdue_invoices", err)
		}

		inv.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("fetch_overdue_invoices", err)
		}

		if lastSentAt.Valid {
			t := lastSentAt.Time
			inv.LastFollowUpSentAt = &t
		}
		inv.InvoiceNumber = invoiceNumber.String
		inv.Description = description.String

		if clientID.Valid {
			inv.Client = &models.Client{
				ID:      clientID.String,
				OwnerID: inv.OwnerID,
				Name:    clientName.String,
				Email:   clientEmail.String,
				Phone:   clientPhone.String,
			}
		}
		if ownerID.Valid {
			inv.Owner = &models.Account{
				ID:          ownerID.String,
				Email:       ownerEmail.String,
				CompanyName: ownerCompany.String,
			}
		}

		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewInvoiceFetchFailedError(err)
	}

	return invoices, nil
}

func (s *PostgresStore) FetchOwnerSettings(ctx context.Context, ownerID string) (*models.OwnerSettings, error) {
	var (
		settings models.OwnerSettings
		channels []string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, follow_up_interval_hours, tone_preference,
		       enabled_channels, automation_enabled
		FROM owner_settings
		WHERE owner_id = $1`, ownerID).Scan(
		&settings.ID, &settings.OwnerID, &settings.FollowUpIntervalHours,
		&settings.TonePreference, pq.Array(&channels), &settings.AutomationEnabled,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, stderrors.NewQueryExecutionFailedError("fetch_owner_settings", err)
	}

	for _, ch := range channels {
		settings.EnabledChannels = append(settings.EnabledChannels, models.NotificationChannel(ch))
	}

	if err := validateSettings(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// validateSettings rejects rows that would break the decision engine or the
// renderer: unknown tones, unknown or empty channel sets, non-positive
// intervals.
func validateSettings(settings *models.OwnerSettings) error {
	switch settings.TonePreference {
	case models.ToneFriendly, models.ToneProfessional, models.ToneFirm:
	default:
		return stderrors.NewSettingsInvalidError(settings.OwnerID,
			"unknown tone preference: "+string(settings.TonePreference))
	}

	if len(settings.EnabledChannels) == 0 {
		return stderrors.NewSettingsInvalidError(settings.OwnerID, "enabled_channels is empty")
	}
	for _, ch := range settings.EnabledChannels {
		known := false
		for _, k := range models.KnownChannels {
			if ch == k {
				known = true
				break
			}
		}
		if !known {
			return stderrors.NewSettingsInvalidError(settings.OwnerID,
				"unknown channel: "+string(ch))
		}
	}

	if settings.FollowUpIntervalHours < 1 {
		return stderrors.NewSettingsInvalidError(settings.OwnerID,
			"follow_up_interval_hours must be positive")
	}

	return nil
}

func (s *PostgresStore) AppendFollowUpLog(ctx context.Context, entry models.FollowUpLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follow_up_logs (id, invoice_id, stage, message_sent, channel, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.InvoiceID, entry.Stage, entry.MessageSent,
		string(entry.Channel), entry.SentAt,
	)
	if err != nil {
		return stderrors.NewLogAppendFailedError(entry.InvoiceID, err)
	}

	s.indexLogEntry(ctx, entry)

	return nil
}

// indexLogEntry mirrors the entry into Elasticsearch. Failures are logged
// and swallowed; the send path never depends on the index.
func (s *PostgresStore) indexLogEntry(ctx context.Context, entry models.FollowUpLog) {
	if s.es == nil {
		return
	}

	doc, err := json.Marshal(entry)
	if err != nil {
		return
	}

	res, err := s.es.Index(
		s.logIndex,
		bytes.NewReader(doc),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(entry.ID),
	)
	if err != nil {
		s.logger.Warn("follow-up log index failed", map[string]interface{}{
			"error":     err.Error(),
			"invoiceId": entry.InvoiceID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Warn("follow-up log index rejected", map[string]interface{}{
			"status":    res.Status(),
			"invoiceId": entry.InvoiceID,
		})
	}
}

func (s *PostgresStore) MutateInvoice(ctx context.Context, id string, patch InvoicePatch) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET stage = $1, escalation_level = $2, last_follow_up_sent_at = $3, status = $4
		WHERE id = $5`,
		patch.Stage, patch.EscalationLevel, patch.LastFollowUpSentAt,
		string(patch.Status), id,
	)
	if err != nil {
		return stderrors.NewInvoiceUpdateFailedError(id, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

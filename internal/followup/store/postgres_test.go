// internal/followup/store/postgres_test.go
package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stderrors "invoice-recovery/internal/common/errors"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invoiceColumns = []string{
	"id", "owner_id", "client_id", "amount", "due_date", "status",
	"source", "stage", "escalation_level", "last_follow_up_sent_at",
	"invoice_number", "description",
	"c_id", "c_name", "c_email", "c_phone",
	"a_id", "a_email", "a_company_name",
}

func newTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(db, logger.NewTestLogger(t)), mock
}

func TestFetchOverdueInvoices(t *testing.T) {
	store, mock := newTestStore(t)

	dueDate := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	lastSent := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(invoiceColumns).
		AddRow(
			"inv-001", "owner-001", "client-001", "1234.50", dueDate, "unpaid",
			"manual", 1, 1, lastSent,
			"INV-2042", "Consulting services",
			"client-001", "Acme Corp", "acme@example.com", "+15550001111",
			"owner-001", "owner@example.com", "Studio North",
		).
		AddRow(
			"inv-002", "owner-001", "client-002", "75.00", dueDate, "overdue",
			"stripe", 0, 0, nil,
			nil, nil,
			"client-002", "Beta LLC", "beta@example.com", nil,
			"owner-001", "owner@example.com", "Studio North",
		)

	mock.ExpectQuery("SELECT i.id, i.owner_id, i.client_id").WillReturnRows(rows)

	invoices, err := store.FetchOverdueInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	first := invoices[0]
	assert.Equal(t, "inv-001", first.ID)
	assert.Equal(t, "1234.5", first.Amount.String())
	assert.Equal(t, models.StatusUnpaid, first.Status)
	assert.Equal(t, 1, first.Stage)
	require.NotNil(t, first.LastFollowUpSentAt)
	assert.Equal(t, lastSent, *first.LastFollowUpSentAt)
	assert.Equal(t, "INV-2042", first.InvoiceNumber)
	require.NotNil(t, first.Client)
	assert.Equal(t, "Acme Corp", first.Client.Name)
	assert.Equal(t, "+15550001111", first.Client.Phone)
	require.NotNil(t, first.Owner)
	assert.Equal(t, "Studio North", first.Owner.CompanyName)

	second := invoices[1]
	assert.Nil(t, second.LastFollowUpSentAt)
	assert.Empty(t, second.InvoiceNumber)
	require.NotNil(t, second.Client)
	assert.Empty(t, second.Client.Phone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchOverdueInvoices_QueryError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT i.id, i.owner_id, i.client_id").
		WillReturnError(errors.New("connection refused"))

	invoices, err := store.FetchOverdueInvoices(context.Background())
	assert.Nil(t, invoices)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeInvoiceFetchFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestFetchOwnerSettings(t *testing.T) {
	store, mock := newTestStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "follow_up_interval_hours", "tone_preference",
		"enabled_channels", "automation_enabled",
	}).AddRow("set-001", "owner-001", 24, "professional", []byte("{email,sms}"), true)

	mock.ExpectQuery("SELECT id, owner_id, follow_up_interval_hours").
		WithArgs("owner-001").
		WillReturnRows(rows)

	settings, err := store.FetchOwnerSettings(context.Background(), "owner-001")
	require.NoError(t, err)
	require.NotNil(t, settings)

	assert.Equal(t, 24, settings.FollowUpIntervalHours)
	assert.Equal(t, models.ToneProfessional, settings.TonePreference)
	assert.Equal(t, []models.NotificationChannel{models.ChannelEmail, models.ChannelSMS}, settings.EnabledChannels)
	assert.True(t, settings.AutomationEnabled)
}

func TestFetchOwnerSettings_NoRow(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT id, owner_id, follow_up_interval_hours").
		WithArgs("owner-404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	settings, err := store.FetchOwnerSettings(context.Background(), "owner-404")
	assert.NoError(t, err)
	assert.Nil(t, settings)
}

func TestFetchOwnerSettings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		tone     string
		channels []byte
	}{
		{"unknown tone", 24, "aggressive", []byte("{email}")},
		{"empty channels", 24, "friendly", []byte("{}")},
		{"unknown channel", 24, "friendly", []byte("{carrier_pigeon}")},
		{"non-positive interval", 0, "friendly", []byte("{email}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newTestStore(t)

			rows := sqlmock.NewRows([]string{
				"id", "owner_id", "follow_up_interval_hours", "tone_preference",
				"enabled_channels", "automation_enabled",
			}).AddRow("set-001", "owner-001", tt.interval, tt.tone, tt.channels, true)

			mock.ExpectQuery("SELECT id, owner_id, follow_up_interval_hours").
				WithArgs("owner-001").
				WillReturnRows(rows)

			settings, err := store.FetchOwnerSettings(context.Background(), "owner-001")
			assert.Nil(t, settings)

			var stdErr *stderrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, stderrors.ErrCodeSettingsInvalid, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestAppendFollowUpLog(t *testing.T) {
	store, mock := newTestStore(t)

	sentAt := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO follow_up_logs").
		WithArgs(sqlmock.AnyArg(), "inv-001", 2, "message body", "email", sentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.AppendFollowUpLog(context.Background(), models.FollowUpLog{
		InvoiceID:   "inv-001",
		Stage:       2,
		MessageSent: "message body",
		Channel:     models.ChannelEmail,
		SentAt:      sentAt,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendFollowUpLog_IndexFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	store, mock := newTestStore(t)
	store = store.WithLogIndex(es, "follow-up-logs")

	mock.ExpectExec("INSERT INTO follow_up_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.AppendFollowUpLog(context.Background(), models.FollowUpLog{
		InvoiceID: "inv-001",
		Stage:     1,
		Channel:   models.ChannelEmail,
	})
	assert.NoError(t, err, "a failed index write must not fail the append")
}

func TestAppendFollowUpLog_InsertError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO follow_up_logs").
		WillReturnError(errors.New("deadlock detected"))

	err := store.AppendFollowUpLog(context.Background(), models.FollowUpLog{
		InvoiceID: "inv-001",
		Channel:   models.ChannelEmail,
	})

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeLogAppendFailed, stdErr.Code)
}

func TestMutateInvoice(t *testing.T) {
	store, mock := newTestStore(t)

	sentAt := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE invoices").
		WithArgs(3, 3, sentAt, "overdue", "inv-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MutateInvoice(context.Background(), "inv-001", InvoicePatch{
		Stage:              3,
		EscalationLevel:    3,
		LastFollowUpSentAt: sentAt,
		Status:             models.StatusOverdue,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateInvoice_UpdateError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("UPDATE invoices").
		WillReturnError(errors.New("connection reset"))

	err := store.MutateInvoice(context.Background(), "inv-001", InvoicePatch{Stage: 1})

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeInvoiceUpdateFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

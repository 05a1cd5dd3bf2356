// internal/followup/notify/whatsapp_test.go
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppAdapter_Send_Success(t *testing.T) {
	var captured whatsAppRequest
	var gotAuth, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "wamid.test123"}},
		})
	}))
	defer server.Close()

	adapter := NewWhatsAppAdapter(config.WhatsAppChannelConfig{
		APIToken:      "token-abc",
		PhoneNumberID: "555000",
		BaseURL:       server.URL,
	}, logger.NewTestLogger(t))

	payload := testPayload()
	payload.To = "+15550001111"
	result := adapter.Send(context.Background(), payload)

	assert.True(t, result.Success)
	assert.Equal(t, models.ChannelWhatsApp, result.Channel)
	assert.Equal(t, "wamid.test123", result.MessageID)

	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "/555000/messages", gotPath)
	assert.Equal(t, "whatsapp", captured.MessagingProduct)
	assert.Equal(t, "text", captured.Type)
	assert.Equal(t, "+15550001111", captured.To)
	assert.Equal(t, payload.Body, captured.Text.Body)
}

func TestWhatsAppAdapter_Send_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	adapter := NewWhatsAppAdapter(config.WhatsAppChannelConfig{
		APIToken:      "expired",
		PhoneNumberID: "555000",
		BaseURL:       server.URL,
	}, logger.NewTestLogger(t))

	result := adapter.Send(context.Background(), testPayload())

	assert.False(t, result.Success)
	assert.Equal(t, "Invalid OAuth access token", result.Error)
}

func TestWhatsAppAdapter_NotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.WhatsAppChannelConfig
	}{
		{"missing token", config.WhatsAppChannelConfig{PhoneNumberID: "555000"}},
		{"missing phone number id", config.WhatsAppChannelConfig{APIToken: "token"}},
		{"empty", config.WhatsAppChannelConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := NewWhatsAppAdapter(tt.cfg, logger.NewTestLogger(t))

			assert.False(t, adapter.IsConfigured())

			result := adapter.Send(context.Background(), testPayload())
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestWhatsAppAdapter_FallbackMessageID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewWhatsAppAdapter(config.WhatsAppChannelConfig{
		APIToken:      "token",
		PhoneNumberID: "555000",
		BaseURL:       server.URL,
	}, logger.NewTestLogger(t))

	result := adapter.Send(context.Background(), testPayload())

	assert.True(t, result.Success)
	assert.Contains(t, result.MessageID, "wa-")
}

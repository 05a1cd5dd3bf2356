// internal/followup/notify/whatsapp.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/http"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"
)

// WhatsAppAdapter delivers follow-ups through the Meta WhatsApp Business API.
type WhatsAppAdapter struct {
	config config.WhatsAppChannelConfig
	logger logger.Logger
	client *http.Client
}

type whatsAppRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	Body string `json:"body"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func NewWhatsAppAdapter(cfg config.WhatsAppChannelConfig, log logger.Logger) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"channel": "whatsapp"}),
		client: http.NewClient(30 * time.Second),
	}
}

func (a *WhatsAppAdapter) Channel() models.NotificationChannel {
	return models.ChannelWhatsApp
}

func (a *WhatsAppAdapter) IsConfigured() bool {
	return a.config.APIToken != "" && a.config.PhoneNumberID != ""
}

func (a *WhatsAppAdapter) Send(ctx context.Context, payload Payload) Result {
	if !a.IsConfigured() {
		return Result{
			Channel: a.Channel(),
			Success: false,
			Error:   "WhatsApp adapter is not configured. Set channels.whatsapp.api_token and channels.whatsapp.phone_number_id.",
		}
	}

	body, err := json.Marshal(whatsAppRequest{
		MessagingProduct: "whatsapp",
		To:               payload.To,
		Type:             "text",
		Text:             whatsAppTextBody{Body: payload.Body},
	})
	if err != nil {
		return Result{Channel: a.Channel(), Success: false, Error: err.Error()}
	}

	url := fmt.Sprintf("%s/%s/messages", a.config.BaseURL, a.config.PhoneNumberID)
	req, err := nethttp.NewRequest(nethttp.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Channel: a.Channel(), Success: false, Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.DoWithContext(ctx, req)
	if err != nil {
		a.logger.Error("WhatsApp send failed", map[string]interface{}{
			"error":     err.Error(),
			"to":        payload.To,
			"invoiceId": payload.InvoiceID,
		})
		return Result{Channel: a.Channel(), Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var parsed whatsAppResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("WhatsApp API returned %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			errMsg = parsed.Error.Message
		}
		a.logger.Error("WhatsApp send rejected", map[string]interface{}{
			"status":    resp.StatusCode,
			"error":     errMsg,
			"invoiceId": payload.InvoiceID,
		})
		return Result{Channel: a.Channel(), Success: false, Error: errMsg}
	}

	messageID := ""
	if len(parsed.Messages) > 0 {
		messageID = parsed.Messages[0].ID
	}
	if messageID == "" {
		messageID = fmt.Sprintf("wa-%d", time.Now().UnixMilli())
	}

	return Result{Channel: a.Channel(), Success: true, MessageID: messageID}
}

// internal/followup/notify/email.go
package notify

import (
	"context"
	"strings"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the slice of the SES client the adapter uses, for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailAdapter delivers follow-ups over AWS SES.
type EmailAdapter struct {
	config config.EmailChannelConfig
	logger logger.Logger
	client SESService
}

// NewEmailAdapter builds the adapter. A failed AWS config load leaves the
// adapter unconfigured rather than failing startup.
func NewEmailAdapter(cfg config.EmailChannelConfig, log logger.Logger) *EmailAdapter {
	a := &EmailAdapter{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"channel": "email"}),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		a.logger.Warn("AWS config load failed, email channel disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return a
	}
	a.client = ses.NewFromConfig(awsCfg)
	return a
}

// NewEmailAdapterWithClient injects a prebuilt SES client (tests).
func NewEmailAdapterWithClient(cfg config.EmailChannelConfig, log logger.Logger, client SESService) *EmailAdapter {
	return &EmailAdapter{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"channel": "email"}),
		client: client,
	}
}

func (a *EmailAdapter) Channel() models.NotificationChannel {
	return models.ChannelEmail
}

func (a *EmailAdapter) IsConfigured() bool {
	return a.config.Enabled && a.config.FromEmail != "" && a.client != nil
}

func (a *EmailAdapter) Send(ctx context.Context, payload Payload) Result {
	if !a.IsConfigured() {
		return Result{
			Channel: a.Channel(),
			Success: false,
			Error:   "Email adapter is not configured. Set channels.email.enabled, channels.email.from_email and AWS credentials.",
		}
	}

	htmlBody := strings.ReplaceAll(payload.Body, "\n", "<br>")

	out, err := a.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{payload.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(payload.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(payload.Body)},
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(a.config.FromEmail),
	})
	if err != nil {
		a.logger.Error("email send failed", map[string]interface{}{
			"error":     err.Error(),
			"to":        payload.To,
			"invoiceId": payload.InvoiceID,
		})
		return Result{Channel: a.Channel(), Success: false, Error: err.Error()}
	}

	return Result{
		Channel:   a.Channel(),
		Success:   true,
		MessageID: aws.ToString(out.MessageId),
	}
}

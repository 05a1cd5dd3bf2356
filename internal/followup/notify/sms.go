// internal/followup/notify/sms.go
package notify

import (
	"context"
	"fmt"
	"time"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/logger"
	"invoice-recovery/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the slice of the SNS client the adapter uses, for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSAdapter delivers follow-ups as text messages over AWS SNS.
type SMSAdapter struct {
	config config.SMSChannelConfig
	logger logger.Logger
	client SNSService
}

func NewSMSAdapter(cfg config.SMSChannelConfig, log logger.Logger) *SMSAdapter {
	a := &SMSAdapter{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"channel": "sms"}),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		a.logger.Warn("AWS config load failed, SMS channel disabled", map[string]interface{}{
			"error": err.Error(),
		})
		return a
	}
	a.client = sns.NewFromConfig(awsCfg)
	return a
}

// NewSMSAdapterWithClient injects a prebuilt SNS client (tests).
func NewSMSAdapterWithClient(cfg config.SMSChannelConfig, log logger.Logger, client SNSService) *SMSAdapter {
	return &SMSAdapter{
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"channel": "sms"}),
		client: client,
	}
}

func (a *SMSAdapter) Channel() models.NotificationChannel {
	return models.ChannelSMS
}

func (a *SMSAdapter) IsConfigured() bool {
	return a.config.Enabled && a.config.SenderID != "" && a.client != nil
}

func (a *SMSAdapter) Send(ctx context.Context, payload Payload) Result {
	if !a.IsConfigured() {
		return Result{
			Channel: a.Channel(),
			Success: false,
			Error:   "SMS adapter is not configured. Set channels.sms.enabled, channels.sms.sender_id and AWS credentials.",
		}
	}

	out, err := a.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(payload.To),
		Message:     aws.String(payload.Body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(a.config.SenderID),
			},
		},
	})
	if err != nil {
		a.logger.Error("SMS send failed", map[string]interface{}{
			"error":     err.Error(),
			"to":        payload.To,
			"invoiceId": payload.InvoiceID,
		})
		return Result{Channel: a.Channel(), Success: false, Error: err.Error()}
	}

	messageID := aws.ToString(out.MessageId)
	if messageID == "" {
		messageID = fmt.Sprintf("sms-%d", time.Now().UnixMilli())
	}

	return Result{Channel: a.Channel(), Success: true, MessageID: messageID}
}

// internal/models/settings.go
package models

import "time"

// TonePreference selects among the fixed message template variants.
type TonePreference string

const (
	ToneFriendly     TonePreference = "friendly"
	ToneProfessional TonePreference = "professional"
	ToneFirm         TonePreference = "firm"
)

// NotificationChannel is a delivery mechanism for a rendered message.
type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelSMS      NotificationChannel = "sms"
	ChannelWhatsApp NotificationChannel = "whatsapp"
)

// KnownChannels lists every channel the service can dispatch to. Adding a
// channel means adding an adapter variant and extending this set.
var KnownChannels = []NotificationChannel{ChannelEmail, ChannelSMS, ChannelWhatsApp}

// OwnerSettings holds a tenant's automation preferences.
type OwnerSettings struct {
	ID                    string                `json:"id"`
	OwnerID               string                `json:"ownerId"`
	FollowUpIntervalHours int                   `json:"followUpIntervalHours"`
	TonePreference        TonePreference        `json:"tonePreference"`
	EnabledChannels       []NotificationChannel `json:"enabledChannels"`
	AutomationEnabled     bool                  `json:"automationEnabled"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

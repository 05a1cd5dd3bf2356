// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Channels  ChannelsConfig  `mapstructure:"channels"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	LogIndex   string   `mapstructure:"log_index"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Delivery Channel Configuration ---

// ChannelsConfig holds settings for every delivery channel. A channel with
// missing required fields degrades to "not configured"; it never fails
// startup.
type ChannelsConfig struct {
	Email    EmailChannelConfig    `mapstructure:"email"`
	SMS      SMSChannelConfig      `mapstructure:"sms"`
	WhatsApp WhatsAppChannelConfig `mapstructure:"whatsapp"`
}

type EmailChannelConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	FromEmail string `mapstructure:"from_email"`
}

type SMSChannelConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SenderID   string `mapstructure:"sender_id"`
	FromNumber string `mapstructure:"from_number"`
}

type WhatsAppChannelConfig struct {
	APIToken      string `mapstructure:"api_token"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
	BaseURL       string `mapstructure:"base_url"`
}

// ProcessorConfig holds settings for the follow-up processor run.
type ProcessorConfig struct {
	SendTimeout int    `mapstructure:"send_timeout"` // milliseconds, per channel attempt
	RunLockTTL  int    `mapstructure:"run_lock_ttl"` // seconds
	RunLockKey  string `mapstructure:"run_lock_key"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

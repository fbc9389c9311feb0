package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ProviderConfig holds one social provider's application credentials.
type ProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
}

// ServerConfig holds all configuration for the identity server. Tags use
// mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogPretty   bool   `mapstructure:"LOG_PRETTY"`

	// RedisAddr switches the pending-link store from in-memory to Redis when
	// set. Required when more than one instance serves the OAuth redirects.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	JWTSecret        string `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`

	// ClientBaseURL is the base URL of the frontend app, used for the
	// post-callback redirects.
	ClientBaseURL string `mapstructure:"CLIENT_BASE_URL"`

	GoogleClientID        string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL     string `mapstructure:"GOOGLE_CALLBACK_URL"`
	FacebookClientID      string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret  string `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	FacebookCallbackURL   string `mapstructure:"FACEBOOK_CALLBACK_URL"`
	LinkedInClientID      string `mapstructure:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret  string `mapstructure:"LINKEDIN_CLIENT_SECRET"`
	LinkedInCallbackURL   string `mapstructure:"LINKEDIN_CALLBACK_URL"`
	InstagramClientID     string `mapstructure:"INSTAGRAM_CLIENT_ID"`
	InstagramClientSecret string `mapstructure:"INSTAGRAM_CLIENT_SECRET"`
	InstagramCallbackURL  string `mapstructure:"INSTAGRAM_CALLBACK_URL"`
	TwitterConsumerKey    string `mapstructure:"TWITTER_CONSUMER_KEY"`
	TwitterConsumerSecret string `mapstructure:"TWITTER_CONSUMER_SECRET"`
	TwitterCallbackURL    string `mapstructure:"TWITTER_CALLBACK_URL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	RazorpayKeyID         string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret     string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayWebhookSecret string `mapstructure:"RAZORPAY_WEBHOOK_SECRET"`
	CashfreeClientID      string `mapstructure:"CASHFREE_CLIENT_ID"`
	CashfreeClientSecret  string `mapstructure:"CASHFREE_CLIENT_SECRET"`
	CashfreeWebhookSecret string `mapstructure:"CASHFREE_WEBHOOK_SECRET"`
}

// Validate rejects configurations that cannot possibly serve requests.
func (c *ServerConfig) Validate() error {
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	return nil
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/identity/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Viper only unmarshals keys it knows about, so every key must be bound
	// explicitly or env-only settings never reach the struct.
	for _, key := range []string{
		"HTTP_PORT", "MONGO_URI", "MONGO_DB_NAME", "LOG_LEVEL", "LOG_PRETTY",
		"REDIS_ADDR", "REDIS_PASSWORD",
		"JWT_SECRET", "JWT_REFRESH_SECRET",
		"CLIENT_BASE_URL",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"FACEBOOK_CLIENT_ID", "FACEBOOK_CLIENT_SECRET", "FACEBOOK_CALLBACK_URL",
		"LINKEDIN_CLIENT_ID", "LINKEDIN_CLIENT_SECRET", "LINKEDIN_CALLBACK_URL",
		"INSTAGRAM_CLIENT_ID", "INSTAGRAM_CLIENT_SECRET", "INSTAGRAM_CALLBACK_URL",
		"TWITTER_CONSUMER_KEY", "TWITTER_CONSUMER_SECRET", "TWITTER_CALLBACK_URL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
		"RAZORPAY_KEY_ID", "RAZORPAY_KEY_SECRET", "RAZORPAY_WEBHOOK_SECRET",
		"CASHFREE_CLIENT_ID", "CASHFREE_CLIENT_SECRET", "CASHFREE_WEBHOOK_SECRET",
	} {
		v.MustBindEnv(key)
	}

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "identity_dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CLIENT_BASE_URL", "http://localhost:3000")
	v.SetDefault("SMTP_PORT", 587)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return &cfg, nil
}

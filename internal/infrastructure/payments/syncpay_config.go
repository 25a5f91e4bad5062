package payments

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAuthURL     = "https://api.syncpayments.com.br/api/partner/v1/auth-token"
	defaultGatewayURL  = "https://api.syncpayments.com.br/v1/gateway/api"
	defaultStatusURL   = "https://api.syncpay.pro/v1/gateway/api/transaction"
	defaultFallbackURL = "https://api.syncpayments.com.br/api/v1/pix"

	defaultRequestTimeout = 30 * time.Second
	defaultStatusTimeout  = 4 * time.Second
	defaultHealthTimeout  = 5 * time.Second
	defaultMaxAttempts    = 3
	defaultBackoffBase    = time.Second
)

// SyncPayConfig holds endpoints and credentials of the SyncPay integration.
//
// Supported env vars:
//   - SYNCPAY_AUTH_URL, SYNCPAY_GATEWAY_URL, SYNCPAY_STATUS_URL, SYNCPAY_FALLBACK_URL
//   - SYNCPAY_HEALTH_URL (optional; empty disables the pre-flight probe)
//   - SYNCPAY_CLIENT_ID, SYNCPAY_CLIENT_SECRET
//   - SYNCPAY_EXTRA_KEY, SYNCPAY_EXTRA_VALUE (extra credential field the partner auth requires)
//   - SYNCPAY_STATUS_CLIENT_ID, SYNCPAY_STATUS_CLIENT_SECRET (default to the client id/secret)
//   - SYNCPAY_REQUEST_TIMEOUT (default 30s), SYNCPAY_STATUS_TIMEOUT (default 4s)
//   - SYNCPAY_MAX_ATTEMPTS (default 3)
type SyncPayConfig struct {
	AuthURL     string
	GatewayURL  string
	StatusURL   string
	FallbackURL string
	HealthURL   string

	ClientID     string
	ClientSecret string
	ExtraKey     string
	ExtraValue   string

	StatusClientID     string
	StatusClientSecret string

	RequestTimeout time.Duration
	StatusTimeout  time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
}

func NewSyncPayConfigFromEnv() SyncPayConfig {
	cfg := SyncPayConfig{
		AuthURL:            getenvDefault("SYNCPAY_AUTH_URL", defaultAuthURL),
		GatewayURL:         getenvDefault("SYNCPAY_GATEWAY_URL", defaultGatewayURL),
		StatusURL:          getenvDefault("SYNCPAY_STATUS_URL", defaultStatusURL),
		FallbackURL:        getenvDefault("SYNCPAY_FALLBACK_URL", defaultFallbackURL),
		HealthURL:          strings.TrimSpace(os.Getenv("SYNCPAY_HEALTH_URL")),
		ClientID:           strings.TrimSpace(os.Getenv("SYNCPAY_CLIENT_ID")),
		ClientSecret:       strings.TrimSpace(os.Getenv("SYNCPAY_CLIENT_SECRET")),
		ExtraKey:           strings.TrimSpace(os.Getenv("SYNCPAY_EXTRA_KEY")),
		ExtraValue:         strings.TrimSpace(os.Getenv("SYNCPAY_EXTRA_VALUE")),
		StatusClientID:     strings.TrimSpace(os.Getenv("SYNCPAY_STATUS_CLIENT_ID")),
		StatusClientSecret: strings.TrimSpace(os.Getenv("SYNCPAY_STATUS_CLIENT_SECRET")),
	}
	if d, err := time.ParseDuration(os.Getenv("SYNCPAY_REQUEST_TIMEOUT")); err == nil {
		cfg.RequestTimeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("SYNCPAY_STATUS_TIMEOUT")); err == nil {
		cfg.StatusTimeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("SYNCPAY_MAX_ATTEMPTS")); err == nil {
		cfg.MaxAttempts = n
	}
	return cfg.withDefaults()
}

func (c SyncPayConfig) withDefaults() SyncPayConfig {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.StatusTimeout <= 0 {
		c.StatusTimeout = defaultStatusTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	if c.StatusClientID == "" {
		c.StatusClientID = c.ClientID
	}
	if c.StatusClientSecret == "" {
		c.StatusClientSecret = c.ClientSecret
	}
	c.StatusURL = strings.TrimRight(c.StatusURL, "/")
	return c
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	Version          string `envconfig:"VERSION" default:"dev"`
	JWTSecret        string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLMinutes  int    `envconfig:"TOKEN_TTL_MINUTES" default:"720"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"12"`
	DebounceWindowMS int    `envconfig:"DEBOUNCE_WINDOW_MS" default:"3000"`
	FeedLimit        int    `envconfig:"FEED_LIMIT" default:"50"`

	// ScannerListenAddr enables the TCP line listener for hardware
	// scanners when non-empty, e.g. ":7070".
	ScannerListenAddr string `envconfig:"SCANNER_LISTEN_ADDR" default:""`

	// AdminEmail/AdminPassword seed the initial admin account when the
	// credential store is empty. A random password is generated and
	// logged once if AdminPassword is left blank.
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@warescan.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	// SMTP settings for password-reset mail. When SMTPHost is empty,
	// reset tokens are logged instead of mailed.
	SMTPHost string `envconfig:"SMTP_HOST" default:""`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER" default:""`
	SMTPPass string `envconfig:"SMTP_PASS" default:""`
	SMTPFrom string `envconfig:"SMTP_FROM" default:"noreply@warescan.local"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

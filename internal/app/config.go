package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

type Config struct {
	URL               string        // Required: identity server base URL (CARONTE_URL)
	Version           string        // Identity server API version (default: v2)
	TokenKey          string        // Signing key for v1 servers
	AllowHTTPRequests bool          // Disables TLS verification towards the identity server
	IssuerID          string        // Expected iss claim
	EnforceIssuer     bool          // Reject tokens from another issuer (default: true)
	AppID             string        // Required: application id
	AppSecret         string        // Signing key for v2 servers, and service credential
	TwoFactor         bool          // Login by e-mailed link instead of password
	SuccessURL        string        // Where browsers land after login (default: /)
	LoginURL          string        // Where browsers without a session are sent (default: /login)
	AdminRole         string        // Role that may read any user profile (default: admin)
	UpdateLocalUser   bool          // Mirror users into the local database
	ExchangeTimeout   time.Duration // Identity server call timeout (default: 5s)

	SessionDriver string        // file, redis or sqlite (default: file)
	SessionPath   string        // Directory of the file driver (default: storage)
	RedisURL      string        // Required by the redis driver
	DatabaseFile  string        // SQLite database file (default: caronte.db)
	SessionMaxAge time.Duration // Idle sqlite sessions are removed after this (default: 30 days)
	RolesFile     string        // Roles declared to the identity server (default: caronte-roles.yaml)

	AppURL               string        // Public URL of this application
	AppName              string        // Shown on the hosted password recovery page
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		URL:               os.Getenv("CARONTE_URL"),
		Version:           getEnvOrDefault("CARONTE_VERSION", "v2"),
		TokenKey:          os.Getenv("CARONTE_TOKEN_KEY"),
		AllowHTTPRequests: getEnvBoolOrDefault("CARONTE_ALLOW_HTTP_REQUESTS", false),
		IssuerID:          os.Getenv("CARONTE_ISSUER_ID"),
		EnforceIssuer:     getEnvBoolOrDefault("CARONTE_ENFORCE_ISSUER", true),
		AppID:             os.Getenv("CARONTE_APP_ID"),
		AppSecret:         os.Getenv("CARONTE_APP_SECRET"),
		TwoFactor:         getEnvBoolOrDefault("CARONTE_2FA", false),
		SuccessURL:        getEnvOrDefault("CARONTE_SUCCESS_URL", "/"),
		LoginURL:          getEnvOrDefault("CARONTE_LOGIN_URL", "/login"),
		AdminRole:         getEnvOrDefault("CARONTE_ADMIN_ROLE", "admin"),
		UpdateLocalUser:   getEnvBoolOrDefault("CARONTE_UPDATE_LOCAL_USER", false),
		ExchangeTimeout:   getEnvDurationOrDefault("CARONTE_EXCHANGE_TIMEOUT", 5*time.Second),

		SessionDriver: strings.ToLower(getEnvOrDefault("CARONTE_SESSION_DRIVER", DriverFile)),
		SessionPath:   getEnvOrDefault("CARONTE_SESSION_PATH", "storage"),
		RedisURL:      os.Getenv("CARONTE_REDIS_URL"),
		DatabaseFile:  getEnvOrDefault("CARONTE_DATABASE_FILE", "caronte.db"),
		SessionMaxAge: getEnvDurationOrDefault("SESSION_MAX_AGE", 30*24*time.Hour),
		RolesFile:     getEnvOrDefault("CARONTE_ROLES_FILE", "caronte-roles.yaml"),

		AppURL:               os.Getenv("APP_URL"),
		AppName:              getEnvOrDefault("APP_NAME", "caronte"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// SigningKey returns the HMAC key tokens are signed with: the token key for
// v1 servers and the application secret otherwise.
func (c Config) SigningKey() string {
	if c.Version == "v1" {
		return c.TokenKey
	}
	return c.AppSecret
}

// SecureCookies reports whether the session cookie should be HTTPS only.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.AppURL, "https://")
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.URL == "" {
		errs = append(errs, errors.New("CARONTE_URL is required"))
	}
	if c.AppID == "" {
		errs = append(errs, errors.New("CARONTE_APP_ID is required"))
	}
	if c.SigningKey() == "" {
		if c.Version == "v1" {
			errs = append(errs, errors.New("CARONTE_TOKEN_KEY is required for v1"))
		} else {
			errs = append(errs, errors.New("CARONTE_APP_SECRET is required"))
		}
	}
	if c.EnforceIssuer && c.IssuerID == "" {
		errs = append(errs, errors.New("CARONTE_ISSUER_ID is required when CARONTE_ENFORCE_ISSUER is on"))
	}

	switch c.SessionDriver {
	case DriverFile, DriverSQLite:
	case DriverRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("CARONTE_REDIS_URL is required by the redis session driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CARONTE_SESSION_DRIVER %q", c.SessionDriver))
	}

	return errors.Join(errs...)
}

// needsDatabase reports whether the sqlite store has to be opened.
func (c Config) needsDatabase() bool {
	return c.SessionDriver == DriverSQLite || c.UpdateLocalUser
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

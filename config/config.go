package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Identity      IdentityConfig
	Storage       StorageConfig
	SendGrid      SendGridConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
	Provisioning  ProvisioningConfig
	TwoFactor     TwoFactorConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	SiteURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// IdentityConfig points at the auth gateway admin API.
type IdentityConfig struct {
	BaseURL        string
	ServiceRoleKey string
	JWTSecret      string
	JWTIssuer      string
}

type StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	CatalogTTLSeconds   int  // Catalog cache TTL in seconds
	DisableCatalogCache bool // Read from DB on every request
}

// ProvisioningConfig bounds the bulk student creation endpoint.
type ProvisioningConfig struct {
	MaxBatchSize int
	HourlyLimit  int
}

type TwoFactorConfig struct {
	CodeTTLMinutes int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("SITE_URL", "https://aulanexo.com")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://aulanexo.com,https://www.aulanexo.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("JWT_ISSUER", "aula-nexo-auth")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_BE_SERVICE_NAME", "aula-nexo-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "aula-nexo")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "aula-nexo-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("CATALOG_CACHE_TTL", 600) // 10 minutes in seconds
	v.SetDefault("DISABLE_CATALOG_CACHE", false)
	v.SetDefault("SENDGRID_FROM_EMAIL", "no-reply@aulanexo.com")
	v.SetDefault("SENDGRID_FROM_NAME", "Aula Nexo")
	v.SetDefault("PROVISIONING_MAX_BATCH_SIZE", 10)
	v.SetDefault("PROVISIONING_HOURLY_LIMIT", 20)
	v.SetDefault("TWO_FACTOR_CODE_TTL_MINUTES", 30)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			SiteURL:        v.GetString("SITE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		Identity: IdentityConfig{
			BaseURL:        v.GetString("IDENTITY_BASE_URL"),
			ServiceRoleKey: v.GetString("IDENTITY_SERVICE_ROLE_KEY"),
			JWTSecret:      v.GetString("JWT_SECRET"),
			JWTIssuer:      v.GetString("JWT_ISSUER"),
		},
		Storage: StorageConfig{
			AccessKeyID:     v.GetString("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("STORAGE_ENDPOINT"),
			Region:          v.GetString("STORAGE_REGION"),
		},
		SendGrid: SendGridConfig{
			APIKey:    v.GetString("SENDGRID_API_KEY"),
			FromEmail: v.GetString("SENDGRID_FROM_EMAIL"),
			FromName:  v.GetString("SENDGRID_FROM_NAME"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			CatalogTTLSeconds:   v.GetInt("CATALOG_CACHE_TTL"),
			DisableCatalogCache: v.GetBool("DISABLE_CATALOG_CACHE"),
		},
		Provisioning: ProvisioningConfig{
			MaxBatchSize: v.GetInt("PROVISIONING_MAX_BATCH_SIZE"),
			HourlyLimit:  v.GetInt("PROVISIONING_HOURLY_LIMIT"),
		},
		TwoFactor: TwoFactorConfig{
			CodeTTLMinutes: v.GetInt("TWO_FACTOR_CODE_TTL_MINUTES"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Identity.BaseURL == "" {
		return fmt.Errorf("IDENTITY_BASE_URL is required")
	}
	if c.Identity.ServiceRoleKey == "" {
		return fmt.Errorf("IDENTITY_SERVICE_ROLE_KEY is required")
	}
	if c.Identity.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.SendGrid.APIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.SiteURL == "" {
		return fmt.Errorf("SITE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Provisioning.MaxBatchSize <= 0 {
		return fmt.Errorf("PROVISIONING_MAX_BATCH_SIZE must be positive")
	}
	if c.Provisioning.HourlyLimit <= 0 {
		return fmt.Errorf("PROVISIONING_HOURLY_LIMIT must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

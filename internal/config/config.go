package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	CORS      CORSConfig
	Extractor ExtractorConfig
	Ingestion IngestionConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorProviderConfig holds settings for a single invoice extraction provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds invoice extraction settings with fallback providers.
type ExtractorConfig struct {
	// Legacy flat fields (single provider)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
	Tertiary  ExtractorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to the flat fields.
func (e *ExtractorConfig) PrimaryConfig() *ExtractorProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return &ExtractorProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		MaxRetries:   e.MaxRetries,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (e *ExtractorConfig) TertiaryConfig() *ExtractorProviderConfig {
	if e.Tertiary.Provider != "" {
		return &e.Tertiary
	}
	return nil
}

// IngestionConfig holds stock ingestion workflow settings.
type IngestionConfig struct {
	// SaleMarkup multiplies the unit cost to price products created from an invoice.
	SaleMarkup        float64 `mapstructure:"sale_markup"`
	MinOCRConfidence  float64 `mapstructure:"min_ocr_confidence"`
	EnhanceImages     bool    `mapstructure:"enhance_images"`
	MaxImageDimension int     `mapstructure:"max_image_dimension"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds the settings used to validate access tokens.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for invoice images.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Load reads configuration from environment variables with the STOCKINGEST_
// prefix. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("STOCKINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "stockingest")
	v.SetDefault("db.password", "stockingest_secret")
	v.SetDefault("db.name", "stockingest_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "12h")
	v.SetDefault("jwt.issuer", "stockingest")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "stockingest-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 15)
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Extractor defaults (flat)
	v.SetDefault("extractor.provider", "claude")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 120)

	// Extractor fallback chain defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("extractor."+tier+".provider", "")
		v.SetDefault("extractor."+tier+".api_key", "")
		v.SetDefault("extractor."+tier+".default_model", "")
		v.SetDefault("extractor."+tier+".max_retries", 2)
		v.SetDefault("extractor."+tier+".timeout_secs", 120)
	}

	// Ingestion defaults
	v.SetDefault("ingestion.sale_markup", 1.3)
	v.SetDefault("ingestion.min_ocr_confidence", 0.2)
	v.SetDefault("ingestion.enhance_images", true)
	v.SetDefault("ingestion.max_image_dimension", 2000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "STOCKINGEST_SERVER_PORT",
		"server.read_timeout":           "STOCKINGEST_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "STOCKINGEST_SERVER_WRITE_TIMEOUT",
		"server.environment":            "STOCKINGEST_SERVER_ENVIRONMENT",
		"db.host":                       "STOCKINGEST_DB_HOST",
		"db.port":                       "STOCKINGEST_DB_PORT",
		"db.user":                       "STOCKINGEST_DB_USER",
		"db.password":                   "STOCKINGEST_DB_PASSWORD",
		"db.name":                       "STOCKINGEST_DB_NAME",
		"db.sslmode":                    "STOCKINGEST_DB_SSLMODE",
		"db.max_open":                   "STOCKINGEST_DB_MAX_OPEN",
		"db.max_idle":                   "STOCKINGEST_DB_MAX_IDLE",
		"jwt.secret":                    "STOCKINGEST_JWT_SECRET",
		"jwt.access_expiry":             "STOCKINGEST_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                    "STOCKINGEST_JWT_ISSUER",
		"s3.region":                     "STOCKINGEST_S3_REGION",
		"s3.bucket":                     "STOCKINGEST_S3_BUCKET",
		"s3.endpoint":                   "STOCKINGEST_S3_ENDPOINT",
		"s3.access_key":                 "STOCKINGEST_S3_ACCESS_KEY",
		"s3.secret_key":                 "STOCKINGEST_S3_SECRET_KEY",
		"s3.max_file_size_mb":           "STOCKINGEST_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":             "STOCKINGEST_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":          "STOCKINGEST_CORS_ALLOWED_ORIGINS",
		"extractor.provider":            "STOCKINGEST_EXTRACTOR_PROVIDER",
		"extractor.api_key":             "STOCKINGEST_EXTRACTOR_API_KEY",
		"extractor.default_model":       "STOCKINGEST_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":         "STOCKINGEST_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":        "STOCKINGEST_EXTRACTOR_TIMEOUT_SECS",
		"ingestion.sale_markup":         "STOCKINGEST_INGESTION_SALE_MARKUP",
		"ingestion.min_ocr_confidence":  "STOCKINGEST_INGESTION_MIN_OCR_CONFIDENCE",
		"ingestion.enhance_images":      "STOCKINGEST_INGESTION_ENHANCE_IMAGES",
		"ingestion.max_image_dimension": "STOCKINGEST_INGESTION_MAX_IMAGE_DIMENSION",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs"} {
			key := "extractor." + tier + "." + field
			envBindings[key] = "STOCKINGEST_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// PaaS hosts set a PORT env var. Use it if STOCKINGEST_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("STOCKINGEST_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Extractor = ExtractorConfig{
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		MaxRetries:   v.GetInt("extractor.max_retries"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Ingestion = IngestionConfig{
		SaleMarkup:        v.GetFloat64("ingestion.sale_markup"),
		MinOCRConfidence:  v.GetFloat64("ingestion.min_ocr_confidence"),
		EnhanceImages:     v.GetBool("ingestion.enhance_images"),
		MaxImageDimension: v.GetInt("ingestion.max_image_dimension"),
	}
	if cfg.Ingestion.SaleMarkup <= 0 {
		return nil, fmt.Errorf("ingestion.sale_markup must be positive, got %v", cfg.Ingestion.SaleMarkup)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ExtractorProviderConfig {
	prefix := "extractor." + tier + "."
	return ExtractorProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "stockingest_db", cfg.DB.Name)
	assert.Equal(t, 1.3, cfg.Ingestion.SaleMarkup)
	assert.Equal(t, 0.2, cfg.Ingestion.MinOCRConfidence)
	assert.True(t, cfg.Ingestion.EnhanceImages)
	assert.Equal(t, 2000, cfg.Ingestion.MaxImageDimension)
	assert.Equal(t, "claude", cfg.Extractor.PrimaryConfig().Provider)
	assert.Nil(t, cfg.Extractor.SecondaryConfig())
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STOCKINGEST_INGESTION_SALE_MARKUP", "1.5")
	t.Setenv("STOCKINGEST_EXTRACTOR_SECONDARY_PROVIDER", "gemini")
	t.Setenv("STOCKINGEST_EXTRACTOR_SECONDARY_API_KEY", "g-key")
	t.Setenv("STOCKINGEST_CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://staff.example.com")
	t.Setenv("STOCKINGEST_SERVER_PORT", "")
	t.Setenv("PORT", "9999")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Ingestion.SaleMarkup)
	secondary := cfg.Extractor.SecondaryConfig()
	require.NotNil(t, secondary)
	assert.Equal(t, "gemini", secondary.Provider)
	assert.Equal(t, "g-key", secondary.APIKey)
	assert.Equal(t, []string{"https://admin.example.com", "https://staff.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":9999", cfg.Server.Port)
}

func TestLoad_RejectsNonPositiveMarkup(t *testing.T) {
	t.Setenv("STOCKINGEST_INGESTION_SALE_MARKUP", "0")

	_, err := config.Load()

	assert.Error(t, err)
}

func TestExtractorConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider:     "claude",
		APIKey:       "sk-legacy",
		DefaultModel: "claude-sonnet-4-20250514",
		MaxRetries:   3,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestExtractorConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.ExtractorProviderConfig{
			Provider: "openai",
			APIKey:   "sk-primary",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestExtractorConfig_TertiaryConfig(t *testing.T) {
	cfg := config.ExtractorConfig{}
	assert.Nil(t, cfg.TertiaryConfig())

	cfg.Tertiary.Provider = "openai"
	assert.Equal(t, "openai", cfg.TertiaryConfig().Provider)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "n", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/n?sslmode=require", db.DSN())
}

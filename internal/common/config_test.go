package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_URL", "HTTP_ADDR", "TESSERACT_BIN", "TESSERACT_LANG", "OPENAI_MODEL", "OPENAI_TIMEOUT", "OPENAI_MAX_TOKENS"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, "coffee-journal.db", cfg.Database.DSN)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "tesseract", cfg.OCR.Tesseract)
	assert.Equal(t, "eng", cfg.OCR.TesseractLang)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/journal")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OPENAI_TIMEOUT", "10s")
	t.Setenv("OPENAI_MAX_TOKENS", "200")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://localhost/journal", cfg.Database.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.2, float64(cfg.LLM.Temperature), 0.001)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("OPENAI_MAX_TOKENS", "many")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestConfigValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Database.DSN = ""
	assert.ErrorContains(t, cfg.Validate(), "DB_URL")

	cfg = LoadConfig()
	cfg.Server.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "HTTP_ADDR")
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, BackendFile, cfg.State.Backend)
	assert.Equal(t, "mornoning_app_state_v1", cfg.State.Key)
	assert.Equal(t, []string{".pdf", ".pptx", ".txt", ".md"}, cfg.Uploads.AllowedExtensions)
	assert.Equal(t, 5, cfg.Generator.NumQuestions)
	assert.Equal(t, 60*time.Second, cfg.Generator.Timeout)
	assert.False(t, cfg.Generator.Enabled())
	assert.Equal(t, 0, cfg.Jobs.MaxRetries)
}

func TestGeminiKeyFallback(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("GEMINI_API_KEY", "key-123")
	v.Set("STATE_BACKEND", "SQLite")
	cfg := fromViper(v)

	assert.Equal(t, "key-123", cfg.Generator.APIKey)
	assert.True(t, cfg.Generator.Enabled())
	assert.Equal(t, BackendSQLite, cfg.State.Backend)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}

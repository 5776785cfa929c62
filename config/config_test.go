package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "GEMINI_MODEL", "MAX_RECORD_BYTES", "CASCADE_ROLLBACK", "GENERATION_TIMEOUT", "SESSION_IDLE_TIMEOUT"} {
		t.Setenv(k, "")
	}

	LoadConfig()

	assert.Equal(t, "8080", Port)
	assert.Equal(t, "mongo", StoreDriver)
	assert.Equal(t, "gemini-2.5-flash-image", GeminiModel)
	assert.Equal(t, 15<<20, MaxRecordBytes)
	assert.False(t, CascadeRollback)
	assert.Equal(t, 5*time.Minute, GenerationTimeout)
	assert.Equal(t, 30*time.Minute, SessionIdleTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("MAX_RECORD_BYTES", "1024")
	t.Setenv("CASCADE_ROLLBACK", "true")
	t.Setenv("GENERATION_TIMEOUT", "30s")

	LoadConfig()

	assert.Equal(t, "9090", Port)
	assert.Equal(t, "redis", StoreDriver)
	assert.Equal(t, 1024, MaxRecordBytes)
	assert.True(t, CascadeRollback)
	assert.Equal(t, 30*time.Second, GenerationTimeout)
}

func TestLoadConfigIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MAX_RECORD_BYTES", "lots")
	t.Setenv("CASCADE_ROLLBACK", "maybe")
	t.Setenv("GENERATION_TIMEOUT", "-1s")

	LoadConfig()

	assert.Equal(t, 15<<20, MaxRecordBytes)
	assert.False(t, CascadeRollback)
	assert.Equal(t, 5*time.Minute, GenerationTimeout)
}

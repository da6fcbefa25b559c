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

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "edu_notes_", cfg.Store.KeyPrefix)
	assert.Equal(t, "admin123", cfg.Admin.Code)
	assert.Equal(t, 7, cfg.Notes.RecentDays)
	assert.Equal(t, 10, cfg.Notes.RecentLimit)
	assert.Equal(t, int64(10*1024*1024), cfg.Notes.MaxFileSizeBytes)
	assert.Equal(t, 10*time.Second, cfg.Notifications.PollInterval)
	assert.True(t, cfg.Exports.Enabled)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("STORE_DRIVER", " Redis ")
	v.Set("NOTES_RECENT_DAYS", 0)
	v.Set("JWT_EXPIRATION", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)

	assert.Equal(t, StoreDriverRedis, cfg.Store.Driver)
	assert.Equal(t, 7, cfg.Notes.RecentDays)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

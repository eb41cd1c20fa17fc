package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperAppliesDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 200, cfg.Consultations.FetchLimit)
	assert.Equal(t, 20, cfg.Consultations.DefaultPageSize)
	assert.Equal(t, 3, cfg.Consultations.UrgentDays)
	assert.Equal(t, 5*time.Minute, cfg.Consultations.StatsCacheTTL)
	assert.Equal(t, "Asia/Seoul", cfg.Consultations.Timezone)
	assert.Zero(t, cfg.Consultations.WarmInterval)
	assert.Equal(t, []string{"thisMonth", "lastMonth"}, cfg.Consultations.WarmPresets)
}

func TestFromViperFallsBackOnInvalidValues(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CONSULTATION_FETCH_LIMIT", -5)
	v.Set("CONSULTATION_STATS_CACHE_TTL", "soon")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, 200, cfg.Consultations.FetchLimit)
	assert.Equal(t, 5*time.Minute, cfg.Consultations.StatsCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestConsultationConfigLocation(t *testing.T) {
	assert.Equal(t, time.UTC, ConsultationConfig{}.Location())
	assert.Equal(t, time.UTC, ConsultationConfig{Timezone: "Mars/Olympus"}.Location())
	assert.Equal(t, "Asia/Seoul", ConsultationConfig{Timezone: "Asia/Seoul"}.Location().String())
}

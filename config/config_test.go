package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, 9090, GetInt("metrics_port"))
	assert.Equal(t, "coinpaprika", GetString("price_source"))
	assert.Equal(t, time.Minute, GetDuration("alert_check_interval"))
	assert.Equal(t, 10*time.Second, GetDuration("alert_first_delay"))
	assert.Equal(t, 15*time.Second, GetDuration("price_lookup_timeout"))
	assert.Equal(t, 10, GetInt("max_alerts_per_user"))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("ALERT_CHECK_INTERVAL", "90s")
	t.Setenv("MAX_ALERTS_PER_USER", "3")

	assert.Equal(t, 90*time.Second, GetDuration("alert_check_interval"))
	assert.Equal(t, 3, GetInt("max_alerts_per_user"))
}

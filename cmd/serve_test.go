package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/canopy-cli/internal/config"
)

func serveTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:          0,
			RatePerSecond: 50,
			RateBurst:     100,
		},
	}
}

func TestApplyServePort_RescuesBadConfiguredPort(t *testing.T) {
	c := serveTestConfig()
	assert.Error(t, c.Validate("serve"), "zero configured port must fail on its own")

	applyServePort(c, 9090)
	assert.NoError(t, c.Validate("serve"))
	assert.Equal(t, 9090, c.Server.Port)
}

func TestApplyServePort_ZeroFlagKeepsConfig(t *testing.T) {
	c := serveTestConfig()
	c.Server.Port = 8080

	applyServePort(c, 0)
	assert.Equal(t, 8080, c.Server.Port)
	assert.NoError(t, c.Validate("serve"))
}

func TestApplyServePort_FlagWinsOverValidConfig(t *testing.T) {
	c := serveTestConfig()
	c.Server.Port = 8080

	applyServePort(c, 3000)
	assert.Equal(t, 3000, c.Server.Port)
}

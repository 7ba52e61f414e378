package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sandfs/internal/config"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name      string
		in        config.LogConfig
		wantLevel string
		wantDev   bool
	}{
		{name: "defaults", in: config.LogConfig{}, wantLevel: "warn", wantDev: false},
		{name: "explicit level", in: config.LogConfig{Level: "error"}, wantLevel: "error", wantDev: false},
		{name: "development", in: config.LogConfig{Development: true}, wantLevel: "debug", wantDev: true},
		{name: "development with level", in: config.LogConfig{Level: "info", Development: true}, wantLevel: "info", wantDev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromConfig(tt.in)
			assert.Equal(t, tt.wantLevel, cfg.Level)
			assert.Equal(t, tt.wantDev, cfg.Development)
			assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(DevelopmentConfig())
	require.NoError(t, err)
	require.NotNil(t, logger.Logger)
	assert.True(t, logger.Core().Enabled(-1)) // debug

	_, err = New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewDefaultAndNop(t *testing.T) {
	assert.NotNil(t, NewDefault().Logger)

	nop := NewNop()
	assert.False(t, nop.Core().Enabled(2)) // error
}

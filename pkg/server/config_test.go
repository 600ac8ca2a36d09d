package server

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CONVEYOR_PORT", "CONVEYOR_DB_PATH", "CONVEYOR_WORKDIR", "CONVEYOR_QUEUE_SIZE", "CONVEYOR_DEBUG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "conveyor.db", cfg.DBPath)
	assert.Equal(t, ".", cfg.Workdir)
	assert.Equal(t, 64, cfg.QueueSize)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONVEYOR_PORT", "9090")
	t.Setenv("CONVEYOR_WORKDIR", dir)
	t.Setenv("CONVEYOR_DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, dir, cfg.Workdir)
	assert.True(t, cfg.Debug)
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Port: 8080, Workdir: dir, QueueSize: 1},
		},
		{
			name:    "port out of range",
			cfg:     Config{Port: 0, Workdir: dir, QueueSize: 1},
			wantErr: "out of range",
		},
		{
			name:    "queue size must be positive",
			cfg:     Config{Port: 8080, Workdir: dir, QueueSize: 0},
			wantErr: "queue size",
		},
		{
			name:    "missing workdir",
			cfg:     Config{Port: 8080, Workdir: dir + "/missing", QueueSize: 1},
			wantErr: "workdir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigLayers(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
platform:
  owner: root
  fee_percent: 8
jwt:
  secret: test-secret
payment:
  genesis:
    alice: 500
`)
	t.Setenv("TICKETING_PLATFORM_MIN_TICKET_PRICE", "42")

	v, err := LoadConfig([]string{"--config", path, "--storage", "memory"})
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "root", cfg.Platform.Owner)
	assert.Equal(t, uint64(8), cfg.Platform.FeePercent)
	assert.Equal(t, uint64(42), cfg.Platform.MinTicketPrice)
	assert.Equal(t, uint64(1008), cfg.Platform.MaxRefundWindow)
	assert.Equal(t, uint64(500), cfg.Payment.Genesis["alice"])
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Chain.BlockInterval)
}

func TestFlagOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
jwt:
  secret: test-secret
`)

	v, err := LoadConfig([]string{"--config", path, "--port", "7000"})
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, ":7000", cfg.ServerAddress())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "unknown storage driver",
			body:    "storage:\n  driver: mongo\njwt:\n  secret: s\n",
			wantErr: "storage.driver",
		},
		{
			name:    "fee above 100",
			body:    "platform:\n  fee_percent: 101\njwt:\n  secret: s\n",
			wantErr: "platform.fee_percent",
		},
		{
			name:    "jwt without secret",
			body:    "jwt:\n  enabled: true\n",
			wantErr: "jwt.secret",
		},
		{
			name:    "unknown custody",
			body:    "payment:\n  custody: escrow\njwt:\n  secret: s\n",
			wantErr: "payment.custody",
		},
		{
			name:    "postgres with in-process rail",
			body:    "storage:\n  driver: postgres\njwt:\n  secret: s\n",
			wantErr: "payment.rail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := LoadConfig([]string{"--config", writeConfig(t, tt.body)})
			require.NoError(t, err)

			_, err = ParseConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMissingConfigFileUsesDefaults(t *testing.T) {
	t.Setenv("TICKETING_JWT_SECRET", "from-env")

	v, err := LoadConfig([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "platform", cfg.Platform.Owner)
	assert.Equal(t, uint64(5), cfg.Platform.FeePercent)
}

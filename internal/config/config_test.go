package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOSTELDESK_STORE", "memory")
	t.Setenv("HOSTELDESK_JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, int64(100*1024), cfg.MaxPhotoBytes)
	assert.Equal(t, 300*time.Millisecond, cfg.ProgressTick)
	assert.Equal(t, 10, cfg.ProgressStep)
	assert.Equal(t, 100, cfg.ProgressCap)
	assert.Equal(t, "strict", cfg.GatePolicy)
	assert.Len(t, cfg.SigningSecret, 32)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosteldesk.yaml")
	body := []byte("address: \":9000\"\nstore: memory\njwt_secret: fromfile\nprogress_tick: 50ms\ngate_policy: lenient\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("HOSTELDESK_ADDRESS", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Address, "environment wins over the file")
	assert.Equal(t, "fromfile", cfg.JWTSecret)
	assert.Equal(t, 50*time.Millisecond, cfg.ProgressTick)
	assert.Equal(t, "lenient", cfg.GatePolicy)
}

func TestLoadRejectsIncompleteConfig(t *testing.T) {
	t.Setenv("HOSTELDESK_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("HOSTELDESK_JWT_SECRET", "secret")
	_, err := Load("")
	require.Error(t, err, "postgres store without DATABASE_URL")

	t.Setenv("HOSTELDESK_STORE", "memory")
	t.Setenv("HOSTELDESK_GATE_POLICY", "whatever")
	_, err = Load("")
	require.Error(t, err)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	t.Setenv("HOSTELDESK_STORE", "memory")
	t.Setenv("HOSTELDESK_JWT_SECRET", "secret")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: libris
modules:
  identity:
    otp_ttl_minutes: 5
    refresh_token_ttl_days: 7
    otp_resend:
      cooldown_seconds: 60
cors:
  origins: "http://a.test, http://b.test,,"
  methods:
    - GET
    - POST
mail:
  host: localhost
  password: from-file
labels: "env:dev, team:core"
secret: c2VjcmV0
`

func TestNewViperFromBytes(t *testing.T) {
	_, err := NewViperFromBytes("", []byte(sampleYAML))
	assert.Error(t, err)

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "libris", cfg.GetString("app.name"))
	assert.Equal(t, 5*time.Minute, cfg.GetMinute("modules.identity.otp_ttl_minutes"))
	assert.Equal(t, 7*24*time.Hour, cfg.GetDay("modules.identity.refresh_token_ttl_days"))
	assert.Equal(t, time.Minute, cfg.GetSecond("modules.identity.otp_resend.cooldown_seconds"))
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.GetArray("cors.origins"))
	assert.Equal(t, []string{"GET", "POST"}, cfg.GetArray("cors.methods"))
	assert.Empty(t, cfg.GetArray("cors.missing"))
	assert.Equal(t, map[string]string{"env": "dev", "team": "core"}, cfg.GetMap("labels"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("secret"))
	assert.NoError(t, cfg.Close())
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("LIBRIS_MAIL_PASSWORD", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GetString("mail.password"))
	assert.Equal(t, "localhost", cfg.GetString("mail.host"))
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, "libris", cfg.GetString("app.name"))

	_, err = NewViper(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

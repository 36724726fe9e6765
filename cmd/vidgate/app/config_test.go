package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{"vidgate", "--secret", "s3cret"}, "/var/lib/vidgate")
	require.NoError(t, err)
	require.Equal(t, 8989, cfg.Port)
	require.Equal(t, "pretty", cfg.LogFormat)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, "/var/lib/vidgate/videos", cfg.VideoRoot)
	require.Equal(t, defaultTokenTTLS, cfg.TokenTTLS)
	require.Equal(t, defaultSegmentTTLS, cfg.SegmentTTLS)
	require.Equal(t, defaultProbeTimeS, cfg.ProbeTimeoutS)
	require.Equal(t, 0, cfg.MaxRequests)
	require.Equal(t, "s3cret", cfg.Secret)
}

func TestLoadConfigNoSecret(t *testing.T) {
	_, err := LoadConfig([]string{"vidgate"}, ".")
	require.Error(t, err)
	require.Contains(t, err.Error(), "secret")
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := LoadConfig([]string{"vidgate",
		"--secret", "s",
		"--port", "9000",
		"--videoroot", "/srv/videos",
		"--domains", " Example.COM ,cdn.example.org, ",
		"--origins", "https://Example.com",
		"--maxrequests", "100",
	}, "/home/user")
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "/srv/videos", cfg.VideoRoot) // already absolute
	require.Equal(t, 100, cfg.MaxRequests)
	require.Equal(t, []string{"example.com", "cdn.example.org"}, cfg.DomainList())
	require.Equal(t, []string{"https://example.com"}, cfg.OriginList())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "vidgate.json")
	data := `{"port": 7777, "loglevel": "DEBUG"}`
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0o644))

	cfg, err := LoadConfig([]string{"vidgate", "--secret", "s", "--cfg", cfgPath}, dir)
	require.NoError(t, err)
	require.Equal(t, 7777, cfg.Port)
	require.Equal(t, "DEBUG", cfg.LogLevel)

	// Explicit command line beats the config file.
	cfg, err = LoadConfig([]string{"vidgate", "--secret", "s", "--cfg", cfgPath,
		"--port", "8001"}, dir)
	require.NoError(t, err)
	require.Equal(t, 8001, cfg.Port)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("VIDGATE_SECRET", "from-env")
	cfg, err := LoadConfig([]string{"vidgate"}, ".")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Secret)
}

func TestDomainListEmpty(t *testing.T) {
	cfg := ServerConfig{}
	require.Empty(t, cfg.DomainList())
	require.Empty(t, cfg.OriginList())
}

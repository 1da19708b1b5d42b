package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExtractHostPort(t *testing.T) {
	type tc struct {
		name      string
		addr      string
		wantHost  string
		wantPort  string
		wantError bool
	}

	tests := []tc{
		{
			name:     "with_scheme_host_and_port",
			addr:     "http://localhost:8080",
			wantHost: "localhost",
			wantPort: "8080",
		},
		{
			name:     "with_scheme_only_host",
			addr:     "http://localhost",
			wantHost: "localhost",
			wantPort: "",
		},
		{
			name:     "ipv4_with_scheme",
			addr:     "http://0.0.0.0:8080",
			wantHost: "0.0.0.0",
			wantPort: "8080",
		},
		{
			name:     "domain_with_scheme",
			addr:     "http://example.com:443",
			wantHost: "example.com",
			wantPort: "443",
		},
		{
			name:     "ipv6_with_scheme_host_and_port",
			addr:     "http://[::1]:9090",
			wantHost: "::1",
			wantPort: "9090",
		},
		{
			name:     "ipv6_with_scheme_only_host",
			addr:     "http://[::1]",
			wantHost: "::1",
			wantPort: "",
		},
		{
			name:     "no_scheme_host_and_port",
			addr:     "localhost:8080",
			wantHost: "localhost",
			wantPort: "8080",
		},
		{
			name:     "no_scheme_ipv6",
			addr:     "[::1]:9090",
			wantHost: "::1",
			wantPort: "9090",
		},
		{
			name:      "invalid_url_missing_host",
			addr:      "http://:8080",
			wantError: true,
		},
		{
			name:      "garbage_string",
			addr:      "not a url",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{HTTPServerAddress: tt.addr}
			host, port, err := cfg.ExtractHostPort()

			if tt.wantError {
				require.Error(t, err, "expected error for addr=%q", tt.addr)
				return
			}

			require.NoError(t, err, "unexpected error for addr=%q", tt.addr)
			require.Equal(t, tt.wantHost, host, "wrong host for addr=%q", tt.addr)
			require.Equal(t, tt.wantPort, port, "wrong port for addr=%q", tt.addr)
		})
	}
}

func TestListenAddress(t *testing.T) {
	cfg := Config{HTTPServerAddress: "http://localhost"}
	addr, err := cfg.ListenAddress()
	require.NoError(t, err)
	require.Equal(t, "localhost:80", addr)

	cfg = Config{HTTPServerAddress: "[::1]:9090"}
	addr, err = cfg.ListenAddress()
	require.NoError(t, err)
	require.Equal(t, "[::1]:9090", addr)

	cfg = Config{HTTPServerAddress: "http://:8080"}
	_, err = cfg.ListenAddress()
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	env := strings.Join([]string{
		"ENVIRONMENT=development",
		"HTTP_SERVER_ADDRESS=0.0.0.0:9000",
		"ALLOWED_ORIGINS=http://localhost:3000,http://localhost:5173",
		"ICON_CACHE_TTL=1h",
		"FETCH_RATE_LIMIT=2.5",
		"STRIP_HTML=true",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	config, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, "development", config.Environment)
	require.Equal(t, "0.0.0.0:9000", config.HTTPServerAddress)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, config.AllowedOrigins)
	require.Equal(t, time.Hour, config.IconCacheTTL)
	require.Equal(t, 2.5, config.FetchRateLimit)
	require.True(t, config.StripHTML)

	// defaults
	require.Equal(t, 512, config.IconCacheSize)
	require.Equal(t, "http", config.URLIndicator)
	require.Equal(t, "[LINK]", config.LinkPlaceholder)
	require.Equal(t, 10*time.Second, config.FetchTimeout)
}

func TestLoadConfig_NoFile(t *testing.T) {
	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", config.HTTPServerAddress)
	require.Equal(t, "https://static.f-list.net/images/eicon/", config.EiconURLBase)
}

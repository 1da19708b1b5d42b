package util

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment       string   `mapstructure:"ENVIRONMENT"`
	HTTPServerAddress string   `mapstructure:"HTTP_SERVER_ADDRESS"`
	RedisAddress      string   `mapstructure:"REDIS_ADDRESS"`
	AllowedOrigins    []string `mapstructure:"ALLOWED_ORIGINS"`

	// icon proxy and image fetching
	IconCacheTTL   time.Duration `mapstructure:"ICON_CACHE_TTL"`
	IconCacheSize  int           `mapstructure:"ICON_CACHE_SIZE"`
	FetchTimeout   time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FetchRateLimit float64       `mapstructure:"FETCH_RATE_LIMIT"`
	FetchBurst     int           `mapstructure:"FETCH_BURST"`

	// markup rendering
	AvatarURLBase   string `mapstructure:"AVATAR_URL_BASE"`
	EiconURLBase    string `mapstructure:"EICON_URL_BASE"`
	ProfileURLBase  string `mapstructure:"PROFILE_URL_BASE"`
	URLIndicator    string `mapstructure:"URL_INDICATOR"`
	LinkPlaceholder string `mapstructure:"LINK_PLACEHOLDER"`
	PendingGlyph    string `mapstructure:"PENDING_GLYPH"`
	StripHTML       bool   `mapstructure:"STRIP_HTML"`
}

// defaults are used for every key missing from both app.env and the environment.
// Every key must be listed here, since viper only looks up the environment for known keys.
var defaults = map[string]any{
	"ENVIRONMENT":         "production",
	"HTTP_SERVER_ADDRESS": "0.0.0.0:8080",
	"REDIS_ADDRESS":       "",
	"ALLOWED_ORIGINS":     "",
	"ICON_CACHE_TTL":      24 * time.Hour,
	"ICON_CACHE_SIZE":     512,
	"FETCH_TIMEOUT":       10 * time.Second,
	"FETCH_RATE_LIMIT":    10.0,
	"FETCH_BURST":         20,
	"AVATAR_URL_BASE":     "https://static.f-list.net/images/avatar/",
	"EICON_URL_BASE":      "https://static.f-list.net/images/eicon/",
	"PROFILE_URL_BASE":    "http://f-list.net/c/",
	"URL_INDICATOR":       "http",
	"LINK_PLACEHOLDER":    "[LINK]",
	"PENDING_GLYPH":       "ic_chat_priv",
	"STRIP_HTML":          false,
}

// LoadConfig reads app.env from the path and overrides it with the environment variables.
// The file is optional.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("cannot read config file: %w", err)
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// ExtractHostPort parses the HTTP server address and returns the host and port components.
// The scheme is optional. If no port is specified, port will be an empty string.
func (config *Config) ExtractHostPort() (host string, port string, err error) {
	addr := strings.TrimSpace(config.HTTPServerAddress)
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	urlStr, err := url.Parse(addr)
	if err != nil {
		err = fmt.Errorf("error parsing http server url: %w", err)
		return
	}

	host, port = urlStr.Hostname(), urlStr.Port()
	if host == "" {
		err = fmt.Errorf("http server url %q has no host", config.HTTPServerAddress)
		return "", "", err
	}

	return
}

// ListenAddress returns the address the HTTP server listens on, e.g. "0.0.0.0:8080".
func (config *Config) ListenAddress() (string, error) {
	host, port, err := config.ExtractHostPort()
	if err != nil {
		return "", err
	}

	if port == "" {
		port = "80"
	}

	return net.JoinHostPort(host, port), nil
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	envBaseURL     = "BOULDER_BASE_URL"
	envHost        = "BOULDER_HOST"
	envHTTPTimeout = "BOULDER_HTTP_TIMEOUT"
	envTheme       = "BOULDER_THEME"
)

// Themes the console knows.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config captures runtime configuration for the console client.
type Config struct {
	BaseURL     *url.URL
	HTTPTimeout time.Duration
	Theme       string
}

// Load reads configuration values from the environment and
// applies sane defaults if values are not provided.
func Load() (*Config, error) {
	baseURL := os.Getenv(envBaseURL)

	if baseURL == "" {
		host := strings.TrimSpace(os.Getenv(envHost))
		if host == "" {
			baseURL = "http://127.0.0.1:8080"
		} else {
			if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
				baseURL = host
			} else {
				baseURL = "http://" + host
			}

			if !strings.Contains(baseURL[strings.Index(baseURL, "://")+3:], ":") {
				baseURL = strings.TrimRight(baseURL, "/") + ":8080"
			}
		}
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	timeout := 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv(envHTTPTimeout)); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid %s %q", envHTTPTimeout, raw)
		}
	}

	theme := strings.ToLower(strings.TrimSpace(os.Getenv(envTheme)))
	switch theme {
	case "":
		theme = ThemeDark
	case ThemeDark, ThemeLight:
	default:
		return nil, fmt.Errorf("invalid %s %q: want %s or %s", envTheme, theme, ThemeLight, ThemeDark)
	}

	cfg := &Config{
		BaseURL:     u,
		HTTPTimeout: timeout,
		Theme:       theme,
	}

	return cfg, nil
}

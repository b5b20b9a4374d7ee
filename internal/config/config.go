package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	DataDir        string
	APIBaseURL     string
	RealtimeURL    string
	DevAPI         bool
	AdminEmails    []string
	AllowedOrigins []string
	RequestTimeout time.Duration
	Push           PushConfig
}

type PushConfig struct {
	Endpoint string
	APIKey   string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load overlays environment variables on the values given by flags.
func Load(flagAddr, flagDataDir string, flagDevAPI bool) Config {
	timeout, err := time.ParseDuration(getEnv("TASKHUB_REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	devAPI := flagDevAPI
	if v := os.Getenv("TASKHUB_DEV_API"); v != "" {
		devAPI = strings.EqualFold(v, "true") || v == "1"
	}

	return Config{
		Addr:           getEnv("TASKHUB_ADDR", flagAddr),
		DataDir:        getEnv("TASKHUB_DATA_DIR", flagDataDir),
		APIBaseURL:     getEnv("TASKHUB_API_BASE_URL", "/api"),
		RealtimeURL:    getEnv("TASKHUB_REALTIME_URL", ""),
		DevAPI:         devAPI,
		AdminEmails:    splitList(strings.ToLower(getEnv("TASKHUB_ADMIN_EMAILS", ""))),
		AllowedOrigins: splitList(getEnv("TASKHUB_ALLOWED_ORIGINS", "")),
		RequestTimeout: timeout,
		Push: PushConfig{
			Endpoint: getEnv("TASKHUB_PUSH_ENDPOINT", ""),
			APIKey:   getEnv("TASKHUB_PUSH_KEY", ""),
		},
	}
}

// Client is the configuration of the terminal client.
type Client struct {
	APIBaseURL  string
	RealtimeURL string
	SessionDir  string
	Timeout     time.Duration
}

func LoadClient(flagServer, flagRealtime string) Client {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	timeout, err := time.ParseDuration(getEnv("TASKHUB_REQUEST_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := Client{
		APIBaseURL:  getEnv("TASKHUB_API_BASE_URL", "http://localhost:8080/api"),
		RealtimeURL: getEnv("TASKHUB_REALTIME_URL", ""),
		SessionDir:  getEnv("TASKHUB_SESSION_DIR", home+"/.taskhub"),
		Timeout:     timeout,
	}
	if flagServer != "" {
		c.APIBaseURL = flagServer
	}
	if flagRealtime != "" {
		c.RealtimeURL = flagRealtime
	}
	if c.RealtimeURL == "" {
		c.RealtimeURL = RealtimeFromAPI(c.APIBaseURL)
	}
	return c
}

// RealtimeFromAPI derives the relay URL served next to an API base URL,
// e.g. http://host:8080/api becomes ws://host:8080/ws.
func RealtimeFromAPI(apiBase string) string {
	u := strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

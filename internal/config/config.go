package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates settings for both the backend and the terminal client.
type Config struct {
	Server ServerConfig
	OpenAI OpenAIConfig
	Client ClientConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	openAI, err := loadOpenAIConfig()
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, OpenAI: openAI, Client: client}, nil
}

// ServerConfig describes the backend HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// OpenAIConfig describes the assistant collaborator.
type OpenAIConfig struct {
	APIKey       string
	AssistantID  string
	PollInterval time.Duration
	PollLimit    int
}

// Enabled reports whether the required assistant credentials are present.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != "" && c.AssistantID != ""
}

func loadOpenAIConfig() (OpenAIConfig, error) {
	pollMs := 500
	if override, err := parseOptionalIntEnv("ASSISTANT_POLL_MS"); err != nil {
		return OpenAIConfig{}, err
	} else if override != nil {
		if *override < 50 {
			pollMs = 50
		} else {
			pollMs = *override
		}
	}

	pollLimit := 50
	if override, err := parseOptionalIntEnv("ASSISTANT_POLL_LIMIT"); err != nil {
		return OpenAIConfig{}, err
	} else if override != nil && *override > 0 {
		pollLimit = *override
	}

	return OpenAIConfig{
		APIKey:       strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		AssistantID:  strings.TrimSpace(os.Getenv("ASSISTANT_ID")),
		PollInterval: time.Duration(pollMs) * time.Millisecond,
		PollLimit:    pollLimit,
	}, nil
}

// ClientConfig describes how the terminal client reaches the backend.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

func loadClientConfig() (ClientConfig, error) {
	timeoutS := 30
	if override, err := parseOptionalIntEnv("FISHBUDDY_TIMEOUT_S"); err != nil {
		return ClientConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutS = *override
	}

	base := getEnvOrDefault("FISHBUDDY_BASE_URL", "http://localhost:5000")
	return ClientConfig{
		BaseURL:        strings.TrimRight(base, "/"),
		RequestTimeout: time.Duration(timeoutS) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

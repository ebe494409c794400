// Package creebleclient provides the main entry point for creating Creeble
// API clients.
package creebleclient

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/creeblers/creeble-go/internal/client"
	"github.com/creeblers/creeble-go/pkg/creeble"
)

// DefaultBaseURL is the production Creeble API host.
const DefaultBaseURL = "https://creeble.io"

// New creates a new Creeble API client from the config.
func New(config *creeble.Config) (creeble.Client, error) {
	if config == nil {
		return nil, creeble.ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, creeble.ErrAPIKeyRequired
	}

	config.BaseURL = normalizeBaseURL(config.BaseURL)

	apiClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return apiClient, nil
}

// NewWithAPIKey creates a client with just an API key and defaults for
// everything else.
func NewWithAPIKey(apiKey string) (creeble.Client, error) {
	return New(&creeble.Config{APIKey: apiKey})
}

// NewFromFile loads configuration from a file (YAML, JSON, or TOML by
// extension) plus CREEBLE_* environment variables, then builds a client.
// Environment values override file values.
func NewFromFile(path string) (creeble.Client, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	return New(config)
}

// LoadConfig reads a creeble.Config from a config file and the environment.
func LoadConfig(path string) (*creeble.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("CREEBLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config creeble.Config

	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &config, nil
}

func normalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return DefaultBaseURL
	}

	baseURL = strings.TrimSuffix(baseURL, "/")

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

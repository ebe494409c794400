package creebleclient

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/creeblers/creeble-go/pkg/creeble"
)

// ParseConfig parses a YAML config document into a creeble.Config. Useful
// when the config does not live in a file viper can read, such as an
// embedded document or a secret-manager payload.
func ParseConfig(data []byte) (*creeble.Config, error) {
	var config creeble.Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	return &config, nil
}

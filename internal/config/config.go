// Package config handles configuration loading for claim submission.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so gateway credentials can
// be injected at runtime.
//
// # Example Configuration
//
//	gateway:
//	  senderId: XMLGatewayTestUserID
//	  password: ${GATEWAY_PASSWORD}
//	  test: true
//
//	product:
//	  uri: https://example.org/giving
//	  name: GivingSoft
//	  version: 1.2.0
//
//	claim:
//	  compress: true
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default gateway endpoints.
const (
	DefaultLiveEndpoint = "https://secure.gateway.gov.uk/submission"
	DefaultTestEndpoint = "https://secure.dev.gateway.gov.uk/submission"
)

// Config is the root configuration structure.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Product ProductConfig `yaml:"product"`
	Claim   ClaimConfig   `yaml:"claim"`
}

// GatewayConfig holds gateway credentials and endpoint selection.
type GatewayConfig struct {
	SenderID string `yaml:"senderId"`
	Password string `yaml:"password"`
	// Test routes submissions to the test gateway. Non-boolean YAML
	// values fail at parse time rather than silently defaulting.
	Test      bool `yaml:"test"`
	Endpoints struct {
		Live string `yaml:"live"`
		Test string `yaml:"test"`
	} `yaml:"endpoints"`
}

// ProductConfig identifies the software generating the channel route.
type ProductConfig struct {
	URI     string `yaml:"uri"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ClaimConfig holds claim assembly options.
type ClaimConfig struct {
	// Compress embeds the claim body gzip compressed. Defaults to true
	// when omitted.
	Compress *bool  `yaml:"compress"`
	VendorID string `yaml:"vendorId"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Endpoint returns the gateway URL selected by the test flag.
func (c *Config) Endpoint() string {
	if c.Gateway.Test {
		return c.Gateway.Endpoints.Test
	}
	return c.Gateway.Endpoints.Live
}

// CompressEnabled reports whether claim bodies should be compressed.
func (c *Config) CompressEnabled() bool {
	if c.Claim.Compress == nil {
		return true
	}
	return *c.Claim.Compress
}

func (c *Config) applyDefaults() {
	if c.Gateway.Endpoints.Live == "" {
		c.Gateway.Endpoints.Live = DefaultLiveEndpoint
	}
	if c.Gateway.Endpoints.Test == "" {
		c.Gateway.Endpoints.Test = DefaultTestEndpoint
	}
}

func (c *Config) validate() error {
	if c.Gateway.SenderID == "" {
		return fmt.Errorf("gateway.senderId is required")
	}
	if c.Product.Name == "" {
		return fmt.Errorf("product.name is required")
	}
	if c.Product.Version == "" {
		return fmt.Errorf("product.version is required")
	}
	return nil
}

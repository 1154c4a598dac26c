package authx

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultClockSkew   = 30 * time.Second
	defaultMinRefresh  = 5 * time.Minute
	defaultHTTPTimeout = 5 * time.Second
)

// Signing algorithm families supported by the reference validator. Which
// family applies is a configuration concern of the validator instance, not
// of the calling code.
const (
	AlgorithmHMAC = "HS256"
	AlgorithmRSA  = "RS256"
)

// ValidatorConfig describes how the reference validator verifies tokens.
// Exactly one key source must be set: Secret (HMAC), PublicKeyPEM (static
// RSA key), or JWKSURL (remote RSA key set).
type ValidatorConfig struct {
	Algorithm    string
	Secret       string
	PublicKeyPEM string
	JWKSURL      string

	Issuer   string
	Audience string

	ClockSkew   time.Duration
	MinRefresh  time.Duration
	HTTPTimeout time.Duration
}

// normalize sets default values for optional fields.
func (c *ValidatorConfig) normalize() {
	if c.Algorithm == "" {
		if c.Secret != "" {
			c.Algorithm = AlgorithmHMAC
		} else {
			c.Algorithm = AlgorithmRSA
		}
	}
	if c.ClockSkew <= 0 {
		c.ClockSkew = defaultClockSkew
	}
	if c.MinRefresh <= 0 {
		c.MinRefresh = defaultMinRefresh
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
}

// validate ensures the configuration is usable.
func (c ValidatorConfig) validate() error {
	sources := 0
	if c.Secret != "" {
		sources++
	}
	if c.PublicKeyPEM != "" {
		sources++
	}
	if c.JWKSURL != "" {
		sources++
	}
	switch {
	case sources == 0:
		return errors.New("one of secret, public key, or JWKS URL is required")
	case sources > 1:
		return errors.New("secret, public key, and JWKS URL are mutually exclusive")
	case c.Secret != "" && c.Algorithm != "" && c.Algorithm != AlgorithmHMAC:
		return fmt.Errorf("algorithm %q does not match a shared-secret key", c.Algorithm)
	case c.Secret == "" && c.Algorithm == AlgorithmHMAC:
		return errors.New("HMAC requires a shared secret")
	}
	return nil
}

// fileConfig is the YAML shape of ValidatorConfig; durations are strings in
// Go duration syntax ("30s", "5m").
type fileConfig struct {
	Algorithm    string `yaml:"algorithm"`
	Secret       string `yaml:"secret"`
	PublicKeyPEM string `yaml:"public_key_pem"`
	JWKSURL      string `yaml:"jwks_url"`
	Issuer       string `yaml:"issuer"`
	Audience     string `yaml:"audience"`
	ClockSkew    string `yaml:"clock_skew"`
	MinRefresh   string `yaml:"min_refresh"`
	HTTPTimeout  string `yaml:"http_timeout"`
}

// LoadValidatorConfig reads a ValidatorConfig from a YAML file.
func LoadValidatorConfig(path string) (ValidatorConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ValidatorConfig{}, fmt.Errorf("read config: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return ValidatorConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := ValidatorConfig{
		Algorithm:    file.Algorithm,
		Secret:       file.Secret,
		PublicKeyPEM: file.PublicKeyPEM,
		JWKSURL:      file.JWKSURL,
		Issuer:       file.Issuer,
		Audience:     file.Audience,
	}
	for _, d := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{file.ClockSkew, "clock_skew", &cfg.ClockSkew},
		{file.MinRefresh, "min_refresh", &cfg.MinRefresh},
		{file.HTTPTimeout, "http_timeout", &cfg.HTTPTimeout},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return ValidatorConfig{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if err := cfg.validate(); err != nil {
		return ValidatorConfig{}, err
	}
	return cfg, nil
}

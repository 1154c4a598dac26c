package authx

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadValidatorConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validator.yaml")
	content := `
algorithm: HS256
secret: file-secret
issuer: https://auth.local.dev
audience: https://api.local.dev
clock_skew: 10s
http_timeout: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadValidatorConfig(path)
	if err != nil {
		t.Fatalf("LoadValidatorConfig: %v", err)
	}
	if cfg.Secret != "file-secret" || cfg.Algorithm != AlgorithmHMAC {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ClockSkew != 10*time.Second || cfg.HTTPTimeout != 2*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}

	if _, err := NewValidator(cfg); err != nil {
		t.Fatalf("NewValidator from file config: %v", err)
	}
}

func TestLoadValidatorConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadValidatorConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "validator.yaml")
		if err := os.WriteFile(path, []byte("secret: s\nclock_skew: soon\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadValidatorConfig(path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("no key source", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "validator.yaml")
		if err := os.WriteFile(path, []byte("issuer: x\n"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadValidatorConfig(path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("not yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "validator.yaml")
		if err := os.WriteFile(path, []byte("{{nope"), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadValidatorConfig(path); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestValidatorConfig_Normalize(t *testing.T) {
	cfg := ValidatorConfig{Secret: "s"}
	cfg.normalize()
	if cfg.Algorithm != AlgorithmHMAC {
		t.Fatalf("expected HMAC default for secret configs, got %s", cfg.Algorithm)
	}
	if cfg.ClockSkew != defaultClockSkew || cfg.MinRefresh != defaultMinRefresh || cfg.HTTPTimeout != defaultHTTPTimeout {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	cfg = ValidatorConfig{JWKSURL: "https://example.com/jwks"}
	cfg.normalize()
	if cfg.Algorithm != AlgorithmRSA {
		t.Fatalf("expected RSA default for key-set configs, got %s", cfg.Algorithm)
	}
}

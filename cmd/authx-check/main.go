package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	authx "github.com/bionicotaku/lingo-utils-authx"
	"gopkg.in/yaml.v3"
)

func main() {
	envPath := defaultEnvPath()
	if err := loadEnvFile(envPath); err != nil {
		log.Printf("warning: load %s: %v", envPath, err)
	}

	var (
		defaultConfig = os.Getenv("AUTHX_CONFIG")
		defaultSecret = os.Getenv("AUTHX_SECRET")
		defaultToken  = os.Getenv("AUTHX_TOKEN")
		defaultUsers  = os.Getenv("AUTHX_USERS_FILE")
	)

	configPath := flag.String("config", defaultConfig, "Validator config YAML (env AUTHX_CONFIG)")
	secret := flag.String("secret", defaultSecret, "HMAC shared secret, overrides config (env AUTHX_SECRET)")
	token := flag.String("token", defaultToken, "Bearer token to evaluate (env AUTHX_TOKEN)")
	usersPath := flag.String("users", defaultUsers, "Authorization seed YAML (env AUTHX_USERS_FILE)")
	role := flag.String("role", "", "Role to check")
	permission := flag.String("permission", "", "Permission to check")
	timeout := flag.Duration("timeout", 10*time.Second, "Timeout for the evaluation")
	flag.Parse()

	if *token == "" {
		flag.Usage()
		log.Fatal("token is required (via flag, .env, or environment variables)")
	}

	var (
		cfg authx.ValidatorConfig
		err error
	)
	if *configPath != "" {
		cfg, err = authx.LoadValidatorConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	if *secret != "" {
		cfg.Secret = *secret
	}

	validator, err := authx.NewValidator(cfg)
	if err != nil {
		log.Fatalf("create validator: %v", err)
	}

	provider := authx.NewMemoryProvider()
	if *usersPath != "" {
		if err := seedProvider(provider, *usersPath); err != nil {
			log.Fatalf("seed provider: %v", err)
		}
	}

	service, err := authx.NewService(validator, provider, slog.Default())
	if err != nil {
		log.Fatalf("create service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	eval, err := service.Authorize(ctx, *token)
	if err != nil {
		log.Fatalf("authorization failed: %v", err)
	}

	printEvaluation(eval)
	if *role != "" {
		fmt.Printf("has_role %-20s: %t\n", *role, eval.HasRole(*role))
	}
	if *permission != "" {
		fmt.Printf("has_permission %-14s: %t\n", *permission, eval.HasPermission(*permission))
	}
}

type seedFile struct {
	Users []struct {
		UserID      string         `yaml:"user_id"`
		Roles       []string       `yaml:"roles"`
		Permissions []string       `yaml:"permissions"`
		Attributes  map[string]any `yaml:"attributes"`
	} `yaml:"users"`
}

func seedProvider(provider *authx.MemoryProvider, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return err
	}
	for _, user := range seed.Users {
		provider.SetUserData(&authx.AuthorizationRecord{
			UserID:      user.UserID,
			Roles:       user.Roles,
			Permissions: user.Permissions,
			Attributes:  user.Attributes,
		})
	}
	return nil
}

func printEvaluation(eval *authx.Evaluation) {
	fmt.Println("== Authorization Evaluation ==")
	fmt.Printf("user_id          : %s\n", eval.UserID())
	fmt.Printf("token_roles      : %v\n", eval.TokenRoles())
	fmt.Printf("provider_roles   : %v\n", eval.ProviderRoles())
	fmt.Printf("all_roles        : %v\n", eval.AllRoles())
	fmt.Printf("all_permissions  : %v\n", eval.AllPermissions())
	if iss, ok := eval.Identity.Claims.Issuer(); ok {
		fmt.Printf("issuer           : %s\n", iss)
	}
	if exp, ok := eval.Identity.Claims.Expiration(); ok {
		fmt.Printf("expires_at       : %s\n", exp.Format(time.RFC3339))
	}
}

func defaultEnvPath() string {
	if path := os.Getenv("AUTHX_ENV_FILE"); path != "" {
		return path
	}
	return ".env"
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			log.Printf("warning: invalid line %d in %s", lineNum, filepath.Base(path))
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			log.Printf("warning: set env %s: %v", key, err)
		}
	}
	return scanner.Err()
}

// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// NewConfig loads configuration from the environment, falling back to .env values.
func NewConfig() (*Config, error) {
	return Load(envFile)
}

// Load reads envPath (if it exists) without overriding variables already set,
// then decodes the environment into Config.
func Load(envPath string) (*Config, error) {
	v := viper.New()
	if envPath != "" {
		if envMap, err := godotenv.Read(envPath); err == nil {
			for k, val := range envMap {
				if _, exists := os.LookupEnv(k); !exists {
					_ = os.Setenv(k, val)
				}
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(v.GetString("cors.allowed_origins"))
	cfg.Server.TrustedProxies = splitList(v.GetString("server.trusted_proxies"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trusted_proxies", "")

	v.SetDefault("database.path", "./cosmic_outfits.db")
	v.SetDefault("database.seed_catalog", true)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "CosmicOutfits-api")

	v.SetDefault("redis.addr", "")
	v.SetDefault("cache.catalog_ttl", 5*time.Minute)

	v.SetDefault("ratelimit.auth_rps", 1.0)
	v.SetDefault("ratelimit.auth_burst", 5)

	v.SetDefault("shop.currency", "USD")
	v.SetDefault("shop.free_shipping_cents", 10000)
	v.SetDefault("shop.shipping_cents", 599)
	v.SetDefault("shop.tax_bps", 0)

	v.SetDefault("assets.models_dir", "./assets/models")
	v.SetDefault("cors.allowed_origins", "")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"server.trusted_proxies",
		"database.path",
		"database.seed_catalog",
		"auth.jwt_secret",
		"auth.token_ttl",
		"auth.issuer",
		"admin.api_key",
		"redis.addr",
		"redis.password",
		"redis.db",
		"cache.catalog_ttl",
		"ratelimit.auth_rps",
		"ratelimit.auth_burst",
		"shop.currency",
		"shop.free_shipping_cents",
		"shop.shipping_cents",
		"shop.tax_bps",
		"assets.models_dir",
		"cors.allowed_origins",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

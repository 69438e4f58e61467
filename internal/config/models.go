package config

import (
	"errors"
	"fmt"
	"time"
)

const minSecretLen = 16

// Config holds application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Shop      ShopConfig      `mapstructure:"shop"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	CORS      CORSConfig      `mapstructure:"-"`
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if len(c.Auth.JWTSecret) < minSecretLen {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretLen)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if c.Shop.TaxBPS < 0 || c.Shop.ShippingCents < 0 || c.Shop.FreeShippingCents < 0 {
		return errors.New("shop amounts must not be negative")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// honoured. Empty means the socket peer is always the client.
	TrustedProxies  []string      `mapstructure:"-"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig points at the sqlite file.
type DatabaseConfig struct {
	Path        string `mapstructure:"path"`
	SeedCatalog bool   `mapstructure:"seed_catalog"`
}

// AuthConfig controls JWT issuance.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

// AdminConfig guards catalog management. An empty key disables the admin routes.
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RedisConfig is optional; an empty Addr selects the in-memory cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig sets how long catalog reads stay cached.
type CacheConfig struct {
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
}

// RateLimitConfig throttles signup and login per client IP.
type RateLimitConfig struct {
	AuthRPS   float64 `mapstructure:"auth_rps"`
	AuthBurst int     `mapstructure:"auth_burst"`
}

// ShopConfig holds checkout pricing rules. Amounts are in minor units.
type ShopConfig struct {
	Currency          string `mapstructure:"currency"`
	FreeShippingCents int64  `mapstructure:"free_shipping_cents"`
	ShippingCents     int64  `mapstructure:"shipping_cents"`
	TaxBPS            int64  `mapstructure:"tax_bps"`
}

// AssetsConfig locates the 3D model files served under /assets/models.
type AssetsConfig struct {
	ModelsDir string `mapstructure:"models_dir"`
}

// CORSConfig lists allowed browser origins. Empty allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddr())
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "./cosmic_outfits.db", cfg.Database.Path)
	require.Equal(t, int64(10000), cfg.Shop.FreeShippingCents)
	require.Equal(t, int64(599), cfg.Shop.ShippingCents)
	require.Empty(t, cfg.Redis.Addr)
	require.Empty(t, cfg.CORS.AllowedOrigins)
	require.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL", "90m")
	t.Setenv("SHOP_TAX_BPS", "825")
	t.Setenv("ADMIN_API_KEY", "letmein")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.2")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	require.Equal(t, int64(825), cfg.Shop.TaxBPS)
	require.Equal(t, "letmein", cfg.Admin.APIKey)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.2"}, cfg.Server.TrustedProxies)
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "AUTH_JWT_SECRET=from-file-secret-value\nDATABASE_PATH=/tmp/from-file.db\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("DATABASE_PATH", "/tmp/from-env.db")
	// Registers cleanup for the variable the file is about to set.
	t.Setenv("AUTH_JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("AUTH_JWT_SECRET"))

	cfg, err := Load(envPath)
	require.NoError(t, err)
	require.Equal(t, "from-file-secret-value", cfg.Auth.JWTSecret)
	require.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
}

func TestValidateRejectsShortSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "short")

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.jwt_secret")
}

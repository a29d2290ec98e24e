package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 48*time.Hour, cfg.Auth.AccessTTL)
	require.Equal(t, 120*time.Hour, cfg.Auth.RefreshTTL)
	require.Equal(t, 3*time.Minute, cfg.Cache.TTL)
	require.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	require.Equal(t, 5, cfg.Pagination.PageSize)
	require.Equal(t, "admin@blog.site", cfg.Mail.From)
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")
	t.Setenv("APP_SERVER_PORT", "9999")
	t.Setenv("APP_BILLING_PREMIUM_PRICE_ID", "price_123")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "price_123", cfg.Billing.PremiumPriceID)
}

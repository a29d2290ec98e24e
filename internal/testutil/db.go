// Package testutil opens throwaway databases for service tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/internal/platform/db"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/tool"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", tool.GenerateUUIDV7())
	cfg := db.Config(zap.NewNop().Sugar(), &config.Config{Database: config.DBConfig{SlowQueryThreshold: time.Second}})
	cfg.Logger = cfg.Logger.LogMode(gormlogger.Silent)
	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive for the test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// Config returns a config with the defaults the services expect.
func Config() *config.Config {
	return &config.Config{
		Env:        config.EnvDev,
		Auth:       config.AuthConfig{Secret: "test-secret", Issuer: "inkwell-test", AccessTTL: 48 * time.Hour, RefreshTTL: 120 * time.Hour},
		Cache:      config.CacheConfig{Driver: config.CacheDriverMemory, TTL: 3 * time.Minute},
		Billing:    config.BillingConfig{PremiumPriceID: "price_premium", Currency: "usd"},
		Mail:       config.MailConfig{From: "admin@blog.site"},
		Pagination: config.PageConfig{PageSize: 5, MaxPageSize: 100},
		Trending:   config.TrendingConfig{RefreshInterval: time.Minute},
		Realtime:   config.RealtimeConfig{ClientBuffer: 8, PingInterval: time.Second},
	}
}

// CreateUser inserts a user with the given flags.
func CreateUser(t *testing.T, gdb *gorm.DB, username string, staff, superuser bool) *models.User {
	t.Helper()
	u := &models.User{
		ID:           tool.GenerateUUIDV7(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		IsStaff:      staff,
		IsSuperuser:  superuser,
		IsActive:     true,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, gdb *gorm.DB, title string) *models.Category {
	t.Helper()
	c := &models.Category{ID: tool.GenerateUUIDV7(), Title: title}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

// CreatePost inserts a post by author in category, published at postedAt.
func CreatePost(t *testing.T, gdb *gorm.DB, author *models.User, category *models.Category, title string, postedAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:         tool.GenerateUUIDV7(),
		AuthorID:   author.ID,
		CategoryID: category.ID,
		Title:      title,
		Slug:       tool.GenerateUUIDV7(),
		Text:       title + " body",
		PostedAt:   postedAt,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

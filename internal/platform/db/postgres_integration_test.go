//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell/blog/internal/models"
	"github.com/inkwell/blog/pkg/config"
	"github.com/inkwell/blog/pkg/errs"
	"github.com/inkwell/blog/pkg/tool"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blog"),
		postgres.WithUsername("blog"),
		postgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := zap.NewNop().Sugar()
	gdb, err := NewDB(log, &config.Config{Database: config.DBConfig{DSN: dsn, SlowQueryThreshold: time.Second}})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(log, gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func TestPostgres_SchemaAndErrors(t *testing.T) {
	gdb := startPostgres(t)

	u := &models.User{ID: tool.GenerateUUIDV7(), Email: "a@example.com", Username: "a", PasswordHash: "x", IsActive: true}
	require.NoError(t, gdb.Create(u).Error)

	dup := &models.User{ID: tool.GenerateUUIDV7(), Email: "a@example.com", Username: "b", PasswordHash: "x", IsActive: true}
	err := errs.FromDB(gdb.Create(dup).Error, "user")
	assert.ErrorIs(t, err, errs.ErrConflict)

	err = errs.FromDB(gdb.First(&models.User{}, "id = ?", tool.GenerateUUIDV7()).Error, "user")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	orphan := &models.Product{
		ID: tool.GenerateUUIDV7(), Name: "Tee", Price: decimal.RequireFromString("9.99"),
		CategoryID: tool.GenerateUUIDV7(), ColorID: tool.GenerateUUIDV7(), Details: "cotton", Slug: "tee",
	}
	err = errs.FromDB(gdb.Create(orphan).Error, "product")
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestPostgres_NumericRoundTrip(t *testing.T) {
	gdb := startPostgres(t)

	cat := &models.ProductCategory{ID: tool.GenerateUUIDV7(), Name: "Shirts"}
	color := &models.Color{ID: tool.GenerateUUIDV7(), Name: "Black"}
	require.NoError(t, gdb.Create(cat).Error)
	require.NoError(t, gdb.Create(color).Error)

	p := &models.Product{
		ID: tool.GenerateUUIDV7(), Name: "Tee", Price: decimal.RequireFromString("12.50"),
		CategoryID: cat.ID, ColorID: color.ID, Details: "cotton", Slug: "tee",
	}
	require.NoError(t, gdb.Create(p).Error)

	var got models.Product
	require.NoError(t, gdb.First(&got, "id = ?", p.ID).Error)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")), got.Price.String())
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"accessapi/internal/database"
	"accessapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_IsRepeatable(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "seed.db")
	ctx := context.Background()

	require.NoError(t, run(ctx, url))
	require.NoError(t, run(ctx, url))

	db, err := database.NewConnection(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var grants int64
	require.NoError(t, db.Model(&model.RoleResourcePermission{}).Count(&grants).Error)
	assert.EqualValues(t, 59, grants)
}

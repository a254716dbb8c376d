package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create bills table", "create_bills_table"},
		{"Create-Bills-Table", "create_bills_table"},
		{"CREATE_BILLS_TABLE", "create_bills_table"},
		{"add__daily__usage", "add_daily_usage"},
		{"Add Index 2026", "add_index_2026"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "create bills table", "Bills with detail lines")
	require.NoError(t, err)

	// Version is a YYYYMMDDHHMMSS timestamp
	assert.Len(t, mf.Version, 14)
	assert.Equal(t, "create_bills_table", mf.Name)

	base := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	assert.Equal(t, base, strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql"))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "-- Migration: create_bills_table")
	assert.Contains(t, string(upContent), "Bills with detail lines")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "(Rollback)")
}

func TestCreateMigration_DescriptionDefaultsToName(t *testing.T) {
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add status index", "")
	require.NoError(t, err)

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "-- Description: add status index")
}

func TestCreateMigration_RejectsEmptySlug(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := CreateMigration(tmpDir, "!!!", "nothing usable")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory yields empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("lists pairs once in version order", func(t *testing.T) {
		tmpDir := t.TempDir()
		for _, name := range []string{
			"20260301100000_create_users.up.sql",
			"20260301100000_create_users.down.sql",
			"20260301100100_create_billing.up.sql",
			"20260301100100_create_billing.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("-- x"), 0o644))
		}

		migrations, err := ListMigrations(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20260301100000_create_users",
			"20260301100100_create_billing",
		}, migrations)
	})
}

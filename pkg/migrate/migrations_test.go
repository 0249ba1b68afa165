package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_users.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRequiresGooseHeaders(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing \"-- +goose Down\"")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Product Index!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_product_index.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRefusesDuplicates(t *testing.T) {
	dir := t.TempDir()
	fixed := func() time.Time { return time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) }

	path, err := createSQLMigration(dir, "seed categories", fixed)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260901090000_seed_categories.sql"), path)

	_, err = createSQLMigration(dir, "seed categories", fixed)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, err = createSQLMigration(dir, "!!!", fixed)
	require.Error(t, err)
}

func TestSchemaMigrationsCarryConstraints(t *testing.T) {
	cases := map[string][]string{
		"*_create_users_table.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (email)",
			"DROP TABLE IF EXISTS users",
		},
		"*_create_catalog_tables.sql": {
			"price NUMERIC(12,2) NOT NULL",
			"CHECK (stock >= 0)",
			"PRIMARY KEY (product_id, category_id)",
		},
		"*_create_carts_tables.sql": {
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_user ON carts (user_id)",
			"CREATE UNIQUE INDEX IF NOT EXISTS ux_cart_items_cart_product ON cart_items (cart_id, product_id)",
		},
		"*_create_orders_tables.sql": {
			"product_id BIGINT NULL",
			"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL",
		},
	}

	for pattern, checks := range cases {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		require.NoError(t, err)
		require.Len(t, matches, 1, pattern)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		for _, sub := range checks {
			require.Contains(t, string(data), sub, pattern)
		}
	}
}

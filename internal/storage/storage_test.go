package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dengxuezhao/kompanion/internal/config"
	"github.com/dengxuezhao/kompanion/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "storage_test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.StoredFile{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func sourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// every backend must honor the same contract
func backends(t *testing.T) map[string]Storage {
	fs, err := NewFilesystemStorage(filepath.Join(t.TempDir(), "books"))
	require.NoError(t, err)

	return map[string]Storage{
		"filesystem": fs,
		"memory":     NewMemoryStorage(),
		"database":   NewDatabaseStorage(setupTestDB(t)),
	}
}

func TestStorage_WriteThenRead(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.Write(ctx, sourceFile(t, "book bytes"), "2024/01/02/abc.epub"))

			path, err := backend.Read(ctx, "2024/01/02/abc.epub")
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "book bytes", string(content))
		})
	}
}

func TestStorage_WriteOverwritesExistingKey(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.Write(ctx, sourceFile(t, "first"), "covers/abc.jpg"))
			require.NoError(t, backend.Write(ctx, sourceFile(t, "second"), "covers/abc.jpg"))

			path, err := backend.Read(ctx, "covers/abc.jpg")
			require.NoError(t, err)

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "second", string(content))
		})
	}
}

func TestStorage_ReadUnknownKey(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := backend.Read(context.Background(), "never/written.epub")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStorage_DeleteThenRead(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, backend.Write(ctx, sourceFile(t, "bytes"), "stats/dev/statistics.sqlite3"))
			require.NoError(t, backend.Delete(ctx, "stats/dev/statistics.sqlite3"))

			_, err := backend.Read(ctx, "stats/dev/statistics.sqlite3")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting again is fine
			assert.NoError(t, backend.Delete(ctx, "stats/dev/statistics.sqlite3"))
		})
	}
}

func TestStorage_FilesystemReadReturnsStoredFileDirectly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "books")
	fs, err := NewFilesystemStorage(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, fs.Write(ctx, sourceFile(t, "x"), "a/b/c.epub"))

	path, err := fs.Read(ctx, "a/b/c.epub")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b", "c.epub"), path)
}

func TestNew_SelectsBackendFromConfig(t *testing.T) {
	fs, err := New(config.BookStorage{Type: config.StorageTypeFilesystem, Path: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, (*FilesystemStorage)(nil), fs)

	mem, err := New(config.BookStorage{Type: config.StorageTypeMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, (*MemoryStorage)(nil), mem)

	db, err := New(config.BookStorage{Type: config.StorageTypeDatabase}, setupTestDB(t))
	require.NoError(t, err)
	assert.IsType(t, (*DatabaseStorage)(nil), db)

	_, err = New(config.BookStorage{Type: "tape"}, nil)
	assert.Error(t, err)

	_, err = New(config.BookStorage{Type: config.StorageTypeFilesystem}, nil)
	assert.Error(t, err)
}

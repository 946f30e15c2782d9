package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dengxuezhao/kompanion/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "progress_test.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Progress{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func record(document string, timestamp int64, device string) *entities.Progress {
	return &entities.Progress{
		Document:   document,
		Percentage: 42.5,
		Progress:   "/body/DocFragment[12]/body/p[3]/text().0",
		Device:     device,
		DeviceID:   device + "-id",
		Timestamp:  timestamp,
	}
}

func TestRepository_StoreAssignsID(t *testing.T) {
	repo := setupTestDB(t)

	p := record("doc-1", 100, "kobo")
	require.NoError(t, repo.Store(context.Background(), p))
	assert.NotEmpty(t, p.ID)
}

func TestRepository_HistoryNewestFirst(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, record("doc-1", 100, "kobo")))
	require.NoError(t, repo.Store(ctx, record("doc-1", 300, "boox")))
	require.NoError(t, repo.Store(ctx, record("doc-1", 200, "kindle")))
	require.NoError(t, repo.Store(ctx, record("doc-2", 999, "kobo")))

	history, err := repo.History(ctx, "doc-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(300), history[0].Timestamp)
	assert.Equal(t, int64(200), history[1].Timestamp)
	assert.Equal(t, int64(100), history[2].Timestamp)
}

func TestRepository_HistoryLimit(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for ts := int64(1); ts <= 5; ts++ {
		require.NoError(t, repo.Store(ctx, record("doc-1", ts, "kobo")))
	}

	history, err := repo.History(ctx, "doc-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), history[0].Timestamp)
	assert.Equal(t, int64(4), history[1].Timestamp)
}

func TestRepository_Latest(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "doc-1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Store(ctx, record("doc-1", 100, "kobo")))
	require.NoError(t, repo.Store(ctx, record("doc-1", 250, "boox")))

	latest, err = repo.Latest(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(250), latest.Timestamp)
	assert.Equal(t, "boox", latest.Device)
}

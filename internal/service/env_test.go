package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/orbitdrive/orbitdrive/internal/db"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

const (
	testBucket  = "test-bucket"
	testQuota   = int64(1 << 30) // 1GB default quota in tests
	testExpiry  = 15 * time.Minute
	testStagger = 0 * time.Millisecond
)

// testEnv wires the full service graph over an in-memory database and
// an in-memory object store.
type testEnv struct {
	db      *sqlx.DB
	storage *storage.MemoryStorage
	hub     *realtime.Hub
	locks   *KeyedMutex

	folderRepo   repository.FolderRepository
	fileRepo     repository.FileRepository
	versionRepo  repository.VersionRepository
	quotaRepo    repository.QuotaRepository
	shareRepo    repository.ShareRepository
	permRepo     repository.PermissionRepository
	activityRepo repository.ActivityRepository

	activity    *ActivityService
	quota       *QuotaService
	permissions *PermissionService
	navigator   *NavigatorService
	folders     *FolderService
	files       *FileService
	uploads     *UploadService
	trash       *TrashService
	versions    *VersionService
	bulk        *BulkService
	shares      *ShareService
	sweep       *SweepService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	// A second connection would see a different in-memory database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	env := &testEnv{
		db:      database,
		storage: storage.NewMemoryStorage(),
		hub:     realtime.NewHub(),

		folderRepo:   repository.NewFolderRepository(database),
		fileRepo:     repository.NewFileRepository(database),
		versionRepo:  repository.NewVersionRepository(database),
		quotaRepo:    repository.NewQuotaRepository(database),
		shareRepo:    repository.NewShareRepository(database),
		permRepo:     repository.NewPermissionRepository(database),
		activityRepo: repository.NewActivityRepository(database),
	}

	locks := NewKeyedMutex()
	env.locks = locks

	env.activity = NewActivityService(env.activityRepo)
	env.quota = NewQuotaService(env.quotaRepo, env.fileRepo, testQuota, false)
	env.permissions = NewPermissionService(env.permRepo, env.folderRepo, env.activity)
	env.navigator = NewNavigatorService(env.folderRepo, env.fileRepo, env.permissions)
	env.folders = NewFolderService(env.folderRepo, env.fileRepo, env.versionRepo, env.storage, env.quota, env.permissions, env.activity, env.hub, locks)
	env.files = NewFileService(env.fileRepo, env.folderRepo, env.storage, env.permissions, env.activity, env.hub, testExpiry)
	env.uploads = NewUploadService(env.fileRepo, env.versionRepo, env.storage, testBucket, env.quota, env.permissions, env.activity, env.hub, locks)
	env.trash = NewTrashService(env.fileRepo, env.versionRepo, env.storage, env.quota, env.permissions, env.activity, env.hub)
	env.versions = NewVersionService(env.fileRepo, env.versionRepo, env.storage, env.permissions, env.activity, env.hub)
	env.bulk = NewBulkService(env.files, env.folders, env.trash, testStagger)
	env.shares = NewShareService(env.shareRepo, env.fileRepo, env.folderRepo, env.permissions, env.activity, env.storage, testExpiry)
	env.sweep = NewSweepService(env.versionRepo, env.storage, 0)

	return env
}

// mustCreateFolder creates a folder owned by ownerID.
func (env *testEnv) mustCreateFolder(t *testing.T, ownerID, name string, parentID *string) *model.Folder {
	t.Helper()
	folder, err := env.folders.Create(ownerID, name, model.FolderTypePersonal, parentID)
	require.NoError(t, err)
	return folder
}

// mustUpload runs the full upload pipeline with the given content.
func (env *testEnv) mustUpload(t *testing.T, ownerID, name string, folderID *string, content string) *model.File {
	t.Helper()
	file, err := env.uploads.Upload(context.Background(), ownerID, UploadRequest{
		Name:     name,
		FolderID: folderID,
		MimeType: "application/octet-stream",
		Size:     int64(len(content)),
		Body:     bytes.NewReader([]byte(content)),
	})
	require.NoError(t, err)
	return file
}

// usage reads the owner's quota ledger.
func (env *testEnv) usage(t *testing.T, ownerID string) *model.StorageQuota {
	t.Helper()
	quota, err := env.quota.Usage(ownerID)
	require.NoError(t, err)
	return quota
}

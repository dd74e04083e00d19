package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

func TestFolderCreateDerivesSlug(t *testing.T) {
	env := newTestEnv(t)

	folder := env.mustCreateFolder(t, "alice", "Quarterly Reports (2026)", nil)
	assert.Equal(t, "quarterly-reports-2026", folder.Slug)
	assert.True(t, folder.IsRoot)

	child := env.mustCreateFolder(t, "alice", "Drafts", &folder.ID)
	assert.False(t, child.IsRoot)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, folder.ID, *child.ParentID)
}

func TestFolderCreateRejectsMissingParent(t *testing.T) {
	env := newTestEnv(t)

	missing := "no-such-folder"
	_, err := env.folders.Create("alice", "Orphan", "", &missing)
	assert.Error(t, err)
}

func TestFolderMoveRejectsCycles(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreateFolder(t, "alice", "Root", nil)
	mid := env.mustCreateFolder(t, "alice", "Mid", &root.ID)
	leaf := env.mustCreateFolder(t, "alice", "Leaf", &mid.ID)

	// Into itself
	_, err := env.folders.Move("alice", root.ID, &root.ID)
	assert.ErrorIs(t, err, ErrCyclicMove)

	// Into its own grandchild
	_, err = env.folders.Move("alice", root.ID, &leaf.ID)
	assert.ErrorIs(t, err, ErrCyclicMove)

	// A legal move still works
	moved, err := env.folders.Move("alice", leaf.ID, &root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestFolderMoveRejectsMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Docs", nil)

	missing := "no-such-folder"
	_, err := env.folders.Move("alice", folder.ID, &missing)
	assert.ErrorIs(t, err, ErrInvalidMoveTarget)
}

func TestFolderRecursiveDelete(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreateFolder(t, "alice", "Projects", nil)
	mid := env.mustCreateFolder(t, "alice", "Apollo", &root.ID)
	leaf := env.mustCreateFolder(t, "alice", "Designs", &mid.ID)

	f1 := env.mustUpload(t, "alice", "readme.md", &root.ID, "root file")
	f2 := env.mustUpload(t, "alice", "plan.md", &mid.ID, "mid file!")
	f3 := env.mustUpload(t, "alice", "logo.svg", &leaf.ID, "leaf")

	// A trashed descendant must be cleaned up too
	require.NoError(t, env.trash.Trash("alice", f2.ID))

	require.NoError(t, env.folders.Delete(context.Background(), "alice", root.ID))

	// Folder rows cascade away
	for _, id := range []string{root.ID, mid.ID, leaf.ID} {
		_, err := env.folderRepo.ByID(id)
		assert.ErrorIs(t, err, repository.ErrFolderNotFound)
	}

	// File rows cascade away
	for _, id := range []string{f1.ID, f2.ID, f3.ID} {
		_, err := env.fileRepo.ByID(id)
		assert.ErrorIs(t, err, repository.ErrFileNotFound)
	}

	// Objects reclaimed, quota released
	assert.Equal(t, 0, env.storage.Len())
	quota := env.usage(t, "alice")
	assert.Equal(t, int64(0), quota.UsedBytes)
	assert.Equal(t, int64(0), quota.FileCount)
}

func TestFolderDeleteRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Shared", nil)

	// Edit is not enough for delete
	_, err := env.permissions.Grant("alice", folder.ID, "bob", "edit", nil)
	require.NoError(t, err)

	err = env.folders.Delete(context.Background(), "bob", folder.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFolderDeleteLeavesSiblingsAlone(t *testing.T) {
	env := newTestEnv(t)

	doomed := env.mustCreateFolder(t, "alice", "Doomed", nil)
	kept := env.mustCreateFolder(t, "alice", "Kept", nil)
	env.mustUpload(t, "alice", "gone.txt", &doomed.ID, "x")
	survivor := env.mustUpload(t, "alice", "stays.txt", &kept.ID, "yy")

	require.NoError(t, env.folders.Delete(context.Background(), "alice", doomed.ID))

	got, err := env.fileRepo.ByID(survivor.ID)
	require.NoError(t, err)
	assert.True(t, env.storage.Has(got.StoragePath))

	quota := env.usage(t, "alice")
	assert.Equal(t, int64(2), quota.UsedBytes)
	assert.Equal(t, int64(1), quota.FileCount)
}

// blockingStorage holds every Put until released, keeping an upload in
// flight while something else races it.
type blockingStorage struct {
	storage.Storage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Put(ctx context.Context, path string, r io.Reader) error {
	b.entered <- struct{}{}
	<-b.release
	return b.Storage.Put(ctx, path, r)
}

// A recursive delete must wait for an upload already holding a
// descendant folder's lock; otherwise the upload's row cascades away
// while its object and quota increment survive.
func TestFolderDeleteWaitsForInFlightUpload(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreateFolder(t, "alice", "Projects", nil)
	child := env.mustCreateFolder(t, "alice", "Drafts", &root.ID)

	blocking := &blockingStorage{
		Storage: env.storage,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	uploads := NewUploadService(env.fileRepo, env.versionRepo, blocking,
		testBucket, env.quota, env.permissions, env.activity, env.hub, env.locks)

	uploadDone := make(chan error, 1)
	go func() {
		_, err := uploads.Upload(context.Background(), "alice", UploadRequest{
			Name:     "draft.txt",
			FolderID: &child.ID,
			MimeType: "text/plain",
			Size:     5,
			Body:     bytes.NewReader([]byte("draft")),
		})
		uploadDone <- err
	}()

	// The upload now holds the child folder's lock inside Put
	<-blocking.entered

	deleteDone := make(chan error, 1)
	go func() {
		deleteDone <- env.folders.Delete(context.Background(), "alice", root.ID)
	}()

	select {
	case err := <-deleteDone:
		t.Fatalf("delete finished while an upload into the subtree was in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(blocking.release)
	require.NoError(t, <-uploadDone)
	require.NoError(t, <-deleteDone)

	// The delete saw the committed upload: nothing left anywhere
	assert.Equal(t, 0, env.storage.Len())
	quota := env.usage(t, "alice")
	assert.Zero(t, quota.UsedBytes)
	assert.Zero(t, quota.FileCount)
	_, err := env.folderRepo.ByID(child.ID)
	assert.ErrorIs(t, err, repository.ErrFolderNotFound)
}

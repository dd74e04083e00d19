package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkMoveMixedSelection(t *testing.T) {
	env := newTestEnv(t)

	target := env.mustCreateFolder(t, "alice", "Target", nil)
	folder := env.mustCreateFolder(t, "alice", "Old", nil)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	result := env.bulk.Move(context.Background(), "alice", []BulkItem{
		{ID: file.ID, Kind: BulkKindFile},
		{ID: folder.ID, Kind: BulkKindFolder},
	}, &target.ID)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	movedFile, err := env.fileRepo.ByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, *movedFile.FolderID)

	movedFolder, err := env.folderRepo.ByID(folder.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, *movedFolder.ParentID)
}

// Bulk operations are not transactional: good items land, bad items
// are reported, nothing rolls back.
func TestBulkMovePartialFailure(t *testing.T) {
	env := newTestEnv(t)

	target := env.mustCreateFolder(t, "alice", "Target", nil)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	result := env.bulk.Move(context.Background(), "alice", []BulkItem{
		{ID: file.ID, Kind: BulkKindFile},
		{ID: "no-such-file", Kind: BulkKindFile},
		{ID: file.ID, Kind: "gadget"},
	}, &target.ID)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "no-such-file", result.Errors[0].ID)

	moved, err := env.fileRepo.ByID(file.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, *moved.FolderID)
}

func TestBulkDeleteTrashesFilesAndRemovesFolders(t *testing.T) {
	env := newTestEnv(t)

	folder := env.mustCreateFolder(t, "alice", "Doomed", nil)
	inside := env.mustUpload(t, "alice", "inside.txt", &folder.ID, "xx")
	loose := env.mustUpload(t, "alice", "loose.txt", nil, "y")

	result := env.bulk.Delete(context.Background(), "alice", []BulkItem{
		{ID: loose.ID, Kind: BulkKindFile},
		{ID: folder.ID, Kind: BulkKindFolder},
	})

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	// Files go to the trash, folders are deleted outright
	trashed, err := env.fileRepo.ByID(loose.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsTrashed)

	_, err = env.folderRepo.ByID(folder.ID)
	assert.Error(t, err)
	_, err = env.fileRepo.ByID(inside.ID)
	assert.Error(t, err)
}

func TestBulkDownloadURLsReportPerFile(t *testing.T) {
	env := newTestEnv(t)

	a := env.mustUpload(t, "alice", "a.txt", nil, "x")
	b := env.mustUpload(t, "alice", "b.txt", nil, "y")

	downloads := env.bulk.DownloadURLs(context.Background(), "alice", []string{a.ID, "missing", b.ID})

	require.Len(t, downloads, 3)
	assert.NotEmpty(t, downloads[0].URL)
	assert.Empty(t, downloads[0].Error)
	assert.Empty(t, downloads[1].URL)
	assert.NotEmpty(t, downloads[1].Error)
	assert.NotEmpty(t, downloads[2].URL)
}

func TestBulkDeleteRespectsPermissions(t *testing.T) {
	env := newTestEnv(t)

	file := env.mustUpload(t, "alice", "private.txt", nil, "x")

	result := env.bulk.Delete(context.Background(), "mallory", []BulkItem{
		{ID: file.ID, Kind: BulkKindFile},
	})

	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	kept, err := env.fileRepo.ByID(file.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsTrashed)
}

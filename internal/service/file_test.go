package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
)

func TestFileRename(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "draft.txt", nil, "x")

	renamed, err := env.files.Rename("alice", file.ID, "final.txt")
	require.NoError(t, err)
	assert.Equal(t, "final.txt", renamed.Name)

	// Renaming never touches the stored object
	assert.Equal(t, file.StoragePath, renamed.StoragePath)
	assert.True(t, env.storage.Has(file.StoragePath))
}

func TestFileRenameValidatesName(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "draft.txt", nil, "x")

	_, err := env.files.Rename("alice", file.ID, "")
	assert.Error(t, err)
	_, err = env.files.Rename("alice", file.ID, "a/b.txt")
	assert.Error(t, err)
}

func TestFileMoveBetweenFolders(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Docs", nil)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	moved, err := env.files.Move("alice", file.ID, &folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, *moved.FolderID)

	// Back to the root scope
	moved, err = env.files.Move("alice", file.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)
}

func TestFileMoveRejectsMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	missing := "no-such-folder"
	_, err := env.files.Move("alice", file.ID, &missing)
	assert.ErrorIs(t, err, ErrInvalidMoveTarget)
}

func TestFileStarToggle(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	starred, err := env.files.SetStarred("alice", file.ID, true)
	require.NoError(t, err)
	assert.True(t, starred.IsStarred)

	unstarred, err := env.files.SetStarred("alice", file.ID, false)
	require.NoError(t, err)
	assert.False(t, unstarred.IsStarred)
}

func TestFileDownloadURL(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	url, err := env.files.DownloadURL(context.Background(), "alice", file.ID)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+file.StoragePath, url)

	_, err = env.files.DownloadURL(context.Background(), "mallory", file.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFileSearchScopedToCaller(t *testing.T) {
	env := newTestEnv(t)

	env.mustUpload(t, "alice", "report.pdf", nil, "a")
	env.mustUpload(t, "alice", "notes.txt", nil, "b")
	env.mustUpload(t, "bob", "report.pdf", nil, "c")

	results, err := env.files.Search("alice", repository.SearchParams{Name: "report"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].OwnerID)
}

func TestFileSearchFilters(t *testing.T) {
	env := newTestEnv(t)

	starred := env.mustUpload(t, "alice", "starred.txt", nil, "a")
	env.mustUpload(t, "alice", "plain.txt", nil, "b")
	gone := env.mustUpload(t, "alice", "trashed.txt", nil, "c")

	_, err := env.files.SetStarred("alice", starred.ID, true)
	require.NoError(t, err)
	require.NoError(t, env.trash.Trash("alice", gone.ID))

	results, err := env.files.Search("alice", repository.SearchParams{Starred: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, starred.ID, results[0].ID)

	// Trashed files never match
	results, err = env.files.Search("alice", repository.SearchParams{Name: "trashed"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFileAccessViaFolderGrant(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Shared", nil)
	file := env.mustUpload(t, "alice", "doc.txt", &folder.ID, "x")

	_, err := env.files.ByID("bob", file.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.permissions.Grant("alice", folder.ID, "bob", model.PermissionView, nil)
	require.NoError(t, err)

	got, err := env.files.ByID("bob", file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	// View does not allow renaming
	_, err = env.files.Rename("bob", file.ID, "stolen.txt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFileMutationsPublishChangeEvents(t *testing.T) {
	env := newTestEnv(t)

	sub := env.hub.Subscribe("alice")
	defer env.hub.Unsubscribe(sub)

	file := env.mustUpload(t, "alice", "doc.txt", nil, "x")

	evt := <-sub.C
	assert.Equal(t, model.EventTableFile, evt.Table)
	assert.Equal(t, model.EventOpInsert, evt.Op)

	_, err := env.files.Rename("alice", file.ID, "renamed.txt")
	require.NoError(t, err)

	evt = <-sub.C
	assert.Equal(t, model.EventOpUpdate, evt.Op)
	row, ok := evt.Row.(*model.File)
	require.True(t, ok)
	assert.Equal(t, "renamed.txt", row.Name)
}

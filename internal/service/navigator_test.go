package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowseRootListsOwnFoldersAndUnfiledFiles(t *testing.T) {
	env := newTestEnv(t)

	mine := env.mustCreateFolder(t, "alice", "Mine", nil)
	env.mustCreateFolder(t, "bob", "Not Mine", nil)
	unfiled := env.mustUpload(t, "alice", "loose.txt", nil, "x")
	env.mustUpload(t, "bob", "bobs.txt", nil, "y")

	view, err := env.navigator.Browse("alice", nil)
	require.NoError(t, err)

	require.Len(t, view.Folders, 1)
	assert.Equal(t, mine.ID, view.Folders[0].ID)
	require.Len(t, view.Files, 1)
	assert.Equal(t, unfiled.ID, view.Files[0].ID)
	assert.Empty(t, view.Breadcrumbs)
	assert.Nil(t, view.Folder)
}

func TestBrowseFolderIncludesBreadcrumbTrail(t *testing.T) {
	env := newTestEnv(t)

	root := env.mustCreateFolder(t, "alice", "Root", nil)
	mid := env.mustCreateFolder(t, "alice", "Mid", &root.ID)
	leaf := env.mustCreateFolder(t, "alice", "Leaf", &mid.ID)
	env.mustUpload(t, "alice", "deep.txt", &leaf.ID, "x")

	view, err := env.navigator.Browse("alice", &leaf.ID)
	require.NoError(t, err)

	require.Len(t, view.Breadcrumbs, 3)
	assert.Equal(t, root.ID, view.Breadcrumbs[0].ID)
	assert.Equal(t, mid.ID, view.Breadcrumbs[1].ID)
	assert.Equal(t, leaf.ID, view.Breadcrumbs[2].ID)

	require.Len(t, view.Files, 1)
	assert.Equal(t, "deep.txt", view.Files[0].Name)
}

func TestBrowseHidesTrashedFiles(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Docs", nil)

	visible := env.mustUpload(t, "alice", "a.txt", &folder.ID, "x")
	hidden := env.mustUpload(t, "alice", "b.txt", &folder.ID, "y")
	require.NoError(t, env.trash.Trash("alice", hidden.ID))

	view, err := env.navigator.Browse("alice", &folder.ID)
	require.NoError(t, err)

	require.Len(t, view.Files, 1)
	assert.Equal(t, visible.ID, view.Files[0].ID)
}

func TestBrowseDeniedWithoutView(t *testing.T) {
	env := newTestEnv(t)
	folder := env.mustCreateFolder(t, "alice", "Private", nil)

	_, err := env.navigator.Browse("mallory", &folder.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// A corrupted parent chain must terminate the breadcrumb walk instead
// of looping forever.
func TestBreadcrumbsTerminateOnCyclicParents(t *testing.T) {
	env := newTestEnv(t)

	a := env.mustCreateFolder(t, "alice", "A", nil)
	b := env.mustCreateFolder(t, "alice", "B", &a.ID)

	// Corrupt the chain: A's parent becomes B
	_, err := env.db.Exec(`UPDATE folders SET parent_id = $1 WHERE id = $2`, b.ID, a.ID)
	require.NoError(t, err)

	crumbs, err := env.navigator.Breadcrumbs(b.ID)
	require.NoError(t, err)

	// Each folder appears exactly once
	require.Len(t, crumbs, 2)
	seen := map[string]bool{}
	for _, c := range crumbs {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}
}

package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdrive/orbitdrive/internal/model"
)

// appendVersion writes a new content version directly, the way a
// re-upload of the same file would.
func appendVersion(t *testing.T, env *testEnv, fileID, ownerID, content string) *model.FileVersion {
	t.Helper()

	file, err := env.fileRepo.ByID(fileID)
	require.NoError(t, err)

	path := fmt.Sprintf("owner/%s/root/%s", ownerID, uuid.New().String())
	sum := sha256.Sum256([]byte(content))
	version := &model.FileVersion{
		ID:            uuid.New().String(),
		FileID:        fileID,
		VersionNumber: file.Version + 1,
		Bucket:        testBucket,
		StoragePath:   path,
		SizeBytes:     int64(len(content)),
		Checksum:      hex.EncodeToString(sum[:]),
		ChangeSummary: "Updated content",
		CreatedAt:     time.Now(),
		CreatedBy:     ownerID,
	}
	require.NoError(t, env.storage.Put(context.Background(), path, bytes.NewReader([]byte(content))))
	require.NoError(t, env.versionRepo.Create(version))
	require.NoError(t, env.fileRepo.SetCurrentVersion(fileID, path, version.SizeBytes, version.Checksum, version.VersionNumber, version.ID))

	return version
}

func TestVersionsListedOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "v1")

	appendVersion(t, env, file.ID, "alice", "v2")
	appendVersion(t, env, file.ID, "alice", "v3")

	versions, err := env.versions.Versions("alice", file.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}

func TestRestoreVersionAppendsInsteadOfRewriting(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "v1 content")

	appendVersion(t, env, file.ID, "alice", "v2 content")
	appendVersion(t, env, file.ID, "alice", "v3 content")

	versions, err := env.versions.Versions("alice", file.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	v1 := versions[0]

	restored, err := env.versions.RestoreVersion(context.Background(), "alice", file.ID, v1.ID)
	require.NoError(t, err)

	// The file now points at version 4 carrying v1's content
	assert.Equal(t, 4, restored.Version)
	assert.Equal(t, v1.Checksum, restored.Checksum)
	assert.Equal(t, v1.SizeBytes, restored.SizeBytes)
	assert.NotEqual(t, v1.StoragePath, restored.StoragePath)

	// History is intact, with the restore appended
	versions, err = env.versions.Versions("alice", file.ID)
	require.NoError(t, err)
	require.Len(t, versions, 4)
	assert.Equal(t, "Restored from version 1", versions[3].ChangeSummary)
	assert.Equal(t, v1.Checksum, versions[3].Checksum)

	// The restored object is a copy with the original content
	body, err := env.storage.Get(context.Background(), restored.StoragePath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "v1 content", string(data))
}

func TestRestoreVersionSurvivesRepeatedRestores(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "original")

	versions, err := env.versions.Versions("alice", file.ID)
	require.NoError(t, err)

	_, err = env.versions.RestoreVersion(context.Background(), "alice", file.ID, versions[0].ID)
	require.NoError(t, err)
	restored, err := env.versions.RestoreVersion(context.Background(), "alice", file.ID, versions[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 3, restored.Version)
}

func TestRestoreVersionRequiresEdit(t *testing.T) {
	env := newTestEnv(t)
	file := env.mustUpload(t, "alice", "doc.txt", nil, "v1")

	versions, err := env.versions.Versions("alice", file.ID)
	require.NoError(t, err)

	_, err = env.versions.RestoreVersion(context.Background(), "mallory", file.ID, versions[0].ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

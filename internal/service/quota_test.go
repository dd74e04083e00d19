package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaAdjustFloorsAtZero(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.quota.Adjust("alice", 100, 1))
	require.NoError(t, env.quota.Adjust("alice", -500, -10))

	quota := env.usage(t, "alice")
	assert.Equal(t, int64(0), quota.UsedBytes)
	assert.Equal(t, int64(0), quota.FileCount)
}

func TestQuotaUsageCreatesLedgerOnFirstUse(t *testing.T) {
	env := newTestEnv(t)

	quota := env.usage(t, "fresh-owner")
	assert.Equal(t, testQuota, quota.QuotaBytes)
	assert.Equal(t, int64(0), quota.UsedBytes)
	assert.Equal(t, int64(0), quota.FileCount)
}

// The ledger must equal the sum of every non-purged file at all times:
// uploads add, trash holds, purge subtracts.
func TestQuotaSumInvariantAcrossLifecycle(t *testing.T) {
	env := newTestEnv(t)

	a := env.mustUpload(t, "alice", "a.bin", nil, "aaaa")   // 4 bytes
	b := env.mustUpload(t, "alice", "b.bin", nil, "bbbbbb") // 6 bytes
	env.mustUpload(t, "alice", "c.bin", nil, "cc")          // 2 bytes

	quota := env.usage(t, "alice")
	assert.Equal(t, int64(12), quota.UsedBytes)
	assert.Equal(t, int64(3), quota.FileCount)

	// Trashing holds the bytes
	require.NoError(t, env.trash.Trash("alice", a.ID))
	quota = env.usage(t, "alice")
	assert.Equal(t, int64(12), quota.UsedBytes)
	assert.Equal(t, int64(3), quota.FileCount)

	// Purging releases them
	require.NoError(t, env.trash.Purge(context.Background(), "alice", a.ID))
	quota = env.usage(t, "alice")
	assert.Equal(t, int64(8), quota.UsedBytes)
	assert.Equal(t, int64(2), quota.FileCount)

	// Restore of a trashed file changes nothing
	require.NoError(t, env.trash.Trash("alice", b.ID))
	require.NoError(t, env.trash.Restore("alice", b.ID))
	quota = env.usage(t, "alice")
	assert.Equal(t, int64(8), quota.UsedBytes)
	assert.Equal(t, int64(2), quota.FileCount)
}

func TestQuotaRecalculateRepairsDrift(t *testing.T) {
	env := newTestEnv(t)

	env.mustUpload(t, "alice", "a.bin", nil, "aaaa")
	env.mustUpload(t, "alice", "b.bin", nil, "bb")

	// Simulate ledger drift
	require.NoError(t, env.quotaRepo.Set("alice", 999, 42))

	quota, err := env.quota.Recalculate("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(6), quota.UsedBytes)
	assert.Equal(t, int64(2), quota.FileCount)
}

func TestQuotaIsolatedPerOwner(t *testing.T) {
	env := newTestEnv(t)

	env.mustUpload(t, "alice", "a.bin", nil, "aaaa")
	env.mustUpload(t, "bob", "b.bin", nil, "b")

	assert.Equal(t, int64(4), env.usage(t, "alice").UsedBytes)
	assert.Equal(t, int64(1), env.usage(t, "bob").UsedBytes)
}

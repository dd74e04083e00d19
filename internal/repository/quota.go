package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrQuotaNotFound = errors.New("storage quota not found")
)

type QuotaRepository interface {
	Ensure(ownerID string, quotaBytes int64) error
	ByOwner(ownerID string) (*model.StorageQuota, error)
	Adjust(ownerID string, deltaBytes, deltaFiles int64) error
	Set(ownerID string, usedBytes, fileCount int64) error
}

type quotaRepository struct {
	db *sqlx.DB
}

func NewQuotaRepository(db *sqlx.DB) *quotaRepository {
	return &quotaRepository{db: db}
}

// Ensure creates the owner's quota row if it does not exist yet.
func (r *quotaRepository) Ensure(ownerID string, quotaBytes int64) error {
	query := `INSERT INTO storage_quotas (owner_id, quota_bytes, used_bytes, file_count, last_calculated_at)
	          VALUES ($1, $2, 0, 0, $3)
	          ON CONFLICT (owner_id) DO NOTHING`

	_, err := r.db.Exec(query, ownerID, quotaBytes, time.Now())
	return err
}

func (r *quotaRepository) ByOwner(ownerID string) (*model.StorageQuota, error) {
	quota := &model.StorageQuota{}
	query := `SELECT * FROM storage_quotas WHERE owner_id = $1`

	err := r.db.Get(quota, query, ownerID)
	if err == sql.ErrNoRows {
		return nil, ErrQuotaNotFound
	}

	return quota, err
}

// Adjust applies a usage delta as one atomic UPDATE. This is the only
// sanctioned mutation path for the counters; concurrent uploads and
// deletes for the same owner must not lose updates. Counters floor at
// zero so arithmetic drift can never drive them negative.
func (r *quotaRepository) Adjust(ownerID string, deltaBytes, deltaFiles int64) error {
	query := `UPDATE storage_quotas
	          SET used_bytes = CASE WHEN used_bytes + $1 < 0 THEN 0 ELSE used_bytes + $1 END,
	              file_count = CASE WHEN file_count + $2 < 0 THEN 0 ELSE file_count + $2 END
	          WHERE owner_id = $3`

	result, err := r.db.Exec(query, deltaBytes, deltaFiles, ownerID)
	if err != nil {
		return err
	}

	return checkFound(result, ErrQuotaNotFound)
}

// Set overwrites the counters with recalculated values.
func (r *quotaRepository) Set(ownerID string, usedBytes, fileCount int64) error {
	query := `UPDATE storage_quotas
	          SET used_bytes = $1, file_count = $2, last_calculated_at = $3
	          WHERE owner_id = $4`

	result, err := r.db.Exec(query, usedBytes, fileCount, time.Now(), ownerID)
	if err != nil {
		return err
	}

	return checkFound(result, ErrQuotaNotFound)
}

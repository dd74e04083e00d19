package model

import (
	"time"
)

// StorageQuota is the authoritative per-owner usage counter. UsedBytes
// covers every file the owner has not permanently purged; trashed files
// still count until purge.
type StorageQuota struct {
	OwnerID          string    `db:"owner_id" json:"owner_id"`
	QuotaBytes       int64     `db:"quota_bytes" json:"quota_bytes"`
	UsedBytes        int64     `db:"used_bytes" json:"used_bytes"`
	FileCount        int64     `db:"file_count" json:"file_count"`
	LastCalculatedAt time.Time `db:"last_calculated_at" json:"last_calculated_at"`
}

func (q *StorageQuota) PercentUsed() float64 {
	if q.QuotaBytes <= 0 {
		return 0
	}
	return float64(q.UsedBytes) / float64(q.QuotaBytes) * 100
}

func (q *StorageQuota) RemainingBytes() int64 {
	remaining := q.QuotaBytes - q.UsedBytes
	if remaining < 0 {
		return 0
	}
	return remaining
}

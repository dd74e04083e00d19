package model

import (
	"time"
)

// FileVersion is one immutable snapshot of a file's content. Rows are
// append-only: restoring an old version appends a new row, it never
// rewrites history.
type FileVersion struct {
	ID            string    `db:"id" json:"id"`
	FileID        string    `db:"file_id" json:"file_id"`
	VersionNumber int       `db:"version_number" json:"version_number"` // Starts at 1, monotonic per file
	Bucket        string    `db:"bucket" json:"-"`
	StoragePath   string    `db:"storage_path" json:"-"`
	SizeBytes     int64     `db:"size_bytes" json:"size_bytes"`
	Checksum      string    `db:"checksum" json:"checksum"`
	ChangeSummary string    `db:"change_summary" json:"change_summary"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
}

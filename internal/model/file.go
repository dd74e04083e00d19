package model

import (
	"time"
)

type File struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"` // Display name, unique per folder (case-insensitive)
	OriginalName     string     `db:"original_name" json:"original_name"`
	FolderID         *string    `db:"folder_id" json:"folder_id"` // nil = not filed in any folder
	OwnerID          string     `db:"owner_id" json:"owner_id"`
	Bucket           string     `db:"bucket" json:"-"`
	StoragePath      string     `db:"storage_path" json:"-"`
	MimeType         string     `db:"mime_type" json:"mime_type"`
	SizeBytes        int64      `db:"size_bytes" json:"size_bytes"`
	Checksum         string     `db:"checksum" json:"checksum"`
	IsStarred        bool       `db:"is_starred" json:"is_starred"`
	IsTrashed        bool       `db:"is_trashed" json:"is_trashed"`
	TrashedAt        *time.Time `db:"trashed_at" json:"trashed_at"`
	Version          int        `db:"version" json:"version"` // Monotonic, matches the current FileVersion
	CurrentVersionID *string    `db:"current_version_id" json:"current_version_id"`
	Metadata         JSONMap    `db:"metadata" json:"metadata"`
	Tags             StringList `db:"tags" json:"tags"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

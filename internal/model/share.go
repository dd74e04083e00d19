package model

import (
	"time"
)

const (
	ShareTypeFile   = "file"
	ShareTypeFolder = "folder"

	SharePermissionView = "view"
	SharePermissionEdit = "edit"
)

// FileShare is a tokenized access grant to a file or folder. Revocation
// flips IsActive; rows are never deleted so the audit trail survives.
type FileShare struct {
	ID            string     `db:"id" json:"id"`
	Token         string     `db:"token" json:"token"`
	FileID        *string    `db:"file_id" json:"file_id"`
	FolderID      *string    `db:"folder_id" json:"folder_id"`
	ShareType     string     `db:"share_type" json:"share_type"`
	Permission    string     `db:"permission" json:"permission"`
	PasswordHash  *string    `db:"password_hash" json:"-"` // bcrypt, nil = no password
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at"`
	MaxDownloads  *int       `db:"max_downloads" json:"max_downloads"`
	DownloadCount int        `db:"download_count" json:"download_count"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	CreatedBy     string     `db:"created_by" json:"created_by"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the share's expiry has passed.
func (s *FileShare) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Exhausted reports whether the download cap has been reached.
func (s *FileShare) Exhausted() bool {
	return s.MaxDownloads != nil && s.DownloadCount >= *s.MaxDownloads
}

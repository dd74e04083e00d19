package model

import (
	"time"
)

const (
	ActivityUpload         = "upload"
	ActivityDownload       = "download"
	ActivityRename         = "rename"
	ActivityMove           = "move"
	ActivityStar           = "star"
	ActivityTrash          = "trash"
	ActivityRestore        = "restore"
	ActivityPurge          = "purge"
	ActivityVersionRestore = "version_restore"
	ActivityShareCreate    = "share_create"
	ActivityShareRevoke    = "share_revoke"
	ActivityFolderCreate   = "folder_create"
	ActivityFolderDelete   = "folder_delete"
)

// FileActivity is an append-only audit row. Writes are best effort and
// must never abort the operation being audited.
type FileActivity struct {
	ID        string    `db:"id" json:"id"`
	FileID    *string   `db:"file_id" json:"file_id"`
	FolderID  *string   `db:"folder_id" json:"folder_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Details   JSONMap   `db:"details" json:"details"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

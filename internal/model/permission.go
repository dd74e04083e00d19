package model

import (
	"time"
)

const (
	PermissionView  = "view"
	PermissionEdit  = "edit"
	PermissionAdmin = "admin"
)

// permissionRank orders permission levels so a grant of a higher level
// satisfies a check for a lower one.
var permissionRank = map[string]int{
	PermissionView:  1,
	PermissionEdit:  2,
	PermissionAdmin: 3,
}

// PermissionAtLeast reports whether have satisfies want.
func PermissionAtLeast(have, want string) bool {
	return permissionRank[have] >= permissionRank[want]
}

type FolderPermission struct {
	ID         string     `db:"id" json:"id"`
	FolderID   string     `db:"folder_id" json:"folder_id"`
	UserID     string     `db:"user_id" json:"user_id"`
	Permission string     `db:"permission" json:"permission"`
	Inherited  bool       `db:"inherited" json:"inherited"`
	GrantedBy  string     `db:"granted_by" json:"granted_by"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

package model

import (
	"time"
)

const (
	FolderTypePersonal   = "personal"
	FolderTypeTeam       = "team"
	FolderTypeRepository = "repository"
	FolderTypeClient     = "client"
)

type Folder struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Slug       string    `db:"slug" json:"slug"`
	ParentID   *string   `db:"parent_id" json:"parent_id"` // nil = root folder
	OwnerID    string    `db:"owner_id" json:"owner_id"`
	FolderType string    `db:"folder_type" json:"folder_type"`
	IsRoot     bool      `db:"is_root" json:"is_root"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Breadcrumb is one step of the path from a root folder down to the
// current folder, ordered root first.
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

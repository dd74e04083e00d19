package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrPermissionNotFound = errors.New("folder permission not found")
)

type PermissionRepository interface {
	Grant(perm *model.FolderPermission) error
	Revoke(folderID, userID string) error
	ForFolderUser(folderID, userID string) (*model.FolderPermission, error)
	ForFolder(folderID string) ([]*model.FolderPermission, error)
}

type permissionRepository struct {
	db *sqlx.DB
}

func NewPermissionRepository(db *sqlx.DB) *permissionRepository {
	return &permissionRepository{db: db}
}

// Grant upserts the user's permission on a folder.
func (r *permissionRepository) Grant(perm *model.FolderPermission) error {
	query := `INSERT INTO folder_permissions (id, folder_id, user_id, permission, inherited, granted_by, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (folder_id, user_id) DO UPDATE SET permission = EXCLUDED.permission,
	              inherited = EXCLUDED.inherited, granted_by = EXCLUDED.granted_by, expires_at = EXCLUDED.expires_at`

	_, err := r.db.Exec(query,
		perm.ID,
		perm.FolderID,
		perm.UserID,
		perm.Permission,
		perm.Inherited,
		perm.GrantedBy,
		perm.ExpiresAt,
		perm.CreatedAt,
	)

	return err
}

func (r *permissionRepository) Revoke(folderID, userID string) error {
	query := `DELETE FROM folder_permissions WHERE folder_id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, folderID, userID)
	if err != nil {
		return err
	}

	return checkFound(result, ErrPermissionNotFound)
}

func (r *permissionRepository) ForFolderUser(folderID, userID string) (*model.FolderPermission, error) {
	perm := &model.FolderPermission{}
	query := `SELECT * FROM folder_permissions WHERE folder_id = $1 AND user_id = $2`

	err := r.db.Get(perm, query, folderID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrPermissionNotFound
	}

	return perm, err
}

func (r *permissionRepository) ForFolder(folderID string) ([]*model.FolderPermission, error) {
	var perms []*model.FolderPermission
	query := `SELECT * FROM folder_permissions WHERE folder_id = $1`

	err := r.db.Select(&perms, query, folderID)
	if err != nil {
		return nil, err
	}

	return perms, nil
}

package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
)

type FolderRepository interface {
	Create(folder *model.Folder) error
	ByID(id string) (*model.Folder, error)
	Children(parentID string) ([]*model.Folder, error)
	Roots(ownerID string) ([]*model.Folder, error)
	Rename(id, name, slug string) error
	Move(id string, parentID *string) error
	Delete(id string) error
}

type folderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *folderRepository {
	return &folderRepository{db: db}
}

func (r *folderRepository) Create(folder *model.Folder) error {
	query := `INSERT INTO folders (id, name, slug, parent_id, owner_id, folder_type, is_root, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		folder.ID,
		folder.Name,
		folder.Slug,
		folder.ParentID,
		folder.OwnerID,
		folder.FolderType,
		folder.IsRoot,
		folder.SortOrder,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	return err
}

func (r *folderRepository) ByID(id string) (*model.Folder, error) {
	folder := &model.Folder{}
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.Get(folder, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFolderNotFound
	}

	return folder, err
}

func (r *folderRepository) Children(parentID string) ([]*model.Folder, error) {
	var folders []*model.Folder
	query := `SELECT * FROM folders WHERE parent_id = $1 ORDER BY sort_order, LOWER(name)`

	err := r.db.Select(&folders, query, parentID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

// Roots lists the owner's top-level folders, ordered by folder type then name.
func (r *folderRepository) Roots(ownerID string) ([]*model.Folder, error) {
	var folders []*model.Folder
	query := `SELECT * FROM folders WHERE parent_id IS NULL AND owner_id = $1 ORDER BY folder_type, LOWER(name)`

	err := r.db.Select(&folders, query, ownerID)
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) Rename(id, name, slug string) error {
	query := `UPDATE folders SET name = $1, slug = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.Exec(query, name, slug, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFolderNotFound)
}

func (r *folderRepository) Move(id string, parentID *string) error {
	query := `UPDATE folders SET parent_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, parentID, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFolderNotFound)
}

// Delete removes the folder row. Descendant folders and files go with it
// via the ON DELETE CASCADE constraints.
func (r *folderRepository) Delete(id string) error {
	query := `DELETE FROM folders WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFolderNotFound)
}

// checkFound converts a zero-rows-affected result into notFoundErr.
func checkFound(result sql.Result, notFoundErr error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFoundErr
	}
	return nil
}

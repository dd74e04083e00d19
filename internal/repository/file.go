package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

// SearchParams filters the file search. Empty fields are ignored.
type SearchParams struct {
	OwnerID  string
	Name     string // substring match, case-insensitive
	MimeType string
	FolderID string
	Starred  bool
}

type FileRepository interface {
	Create(file *model.File) error
	ByID(id string) (*model.File, error)
	InFolder(folderID *string) ([]*model.File, error)
	AllInFolders(folderIDs []string) ([]*model.File, error)
	NamesInFolder(folderID *string) ([]string, error)
	Rename(id, name string) error
	Move(id string, folderID *string) error
	SetStarred(id string, starred bool) error
	SetTrashed(id string, trashed bool, at *time.Time) error
	TrashedByOwner(ownerID string) ([]*model.File, error)
	SetCurrentVersion(id, storagePath string, sizeBytes int64, checksum string, version int, versionID string) error
	Delete(id string) error
	DeleteIDs(ids []string) error
	Search(params SearchParams) ([]*model.File, error)
	OwnerUsage(ownerID string) (bytes int64, count int64, err error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *fileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, name, original_name, folder_id, owner_id, bucket, storage_path, mime_type,
	                             size_bytes, checksum, is_starred, is_trashed, trashed_at, version,
	                             current_version_id, metadata, tags, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := r.db.Exec(query,
		file.ID,
		file.Name,
		file.OriginalName,
		file.FolderID,
		file.OwnerID,
		file.Bucket,
		file.StoragePath,
		file.MimeType,
		file.SizeBytes,
		file.Checksum,
		file.IsStarred,
		file.IsTrashed,
		file.TrashedAt,
		file.Version,
		file.CurrentVersionID,
		file.Metadata,
		file.Tags,
		file.CreatedAt,
		file.UpdatedAt,
	)

	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

// InFolder lists the non-trashed files of a folder. A nil folderID lists
// files not filed in any folder.
func (r *fileRepository) InFolder(folderID *string) ([]*model.File, error) {
	var files []*model.File
	var err error

	if folderID == nil {
		query := `SELECT * FROM files WHERE folder_id IS NULL AND is_trashed = FALSE ORDER BY LOWER(name)`
		err = r.db.Select(&files, query)
	} else {
		query := `SELECT * FROM files WHERE folder_id = $1 AND is_trashed = FALSE ORDER BY LOWER(name)`
		err = r.db.Select(&files, query, *folderID)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

// NamesInFolder returns the display names of all non-trashed files in a
// folder, for collision-free name resolution.
func (r *fileRepository) NamesInFolder(folderID *string) ([]string, error) {
	var names []string
	var err error

	if folderID == nil {
		query := `SELECT name FROM files WHERE folder_id IS NULL AND is_trashed = FALSE`
		err = r.db.Select(&names, query)
	} else {
		query := `SELECT name FROM files WHERE folder_id = $1 AND is_trashed = FALSE`
		err = r.db.Select(&names, query, *folderID)
	}
	if err != nil {
		return nil, err
	}

	return names, nil
}

func (r *fileRepository) Rename(id, name string) error {
	query := `UPDATE files SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, name, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

func (r *fileRepository) Move(id string, folderID *string) error {
	query := `UPDATE files SET folder_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, folderID, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

func (r *fileRepository) SetStarred(id string, starred bool) error {
	query := `UPDATE files SET is_starred = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.Exec(query, starred, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

func (r *fileRepository) SetTrashed(id string, trashed bool, at *time.Time) error {
	query := `UPDATE files SET is_trashed = $1, trashed_at = $2, updated_at = $3 WHERE id = $4`
	result, err := r.db.Exec(query, trashed, at, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

// AllInFolders lists every file in the given folders, trashed included.
// Used by recursive delete, where trashed rows still hold objects and
// quota weight.
func (r *fileRepository) AllInFolders(folderIDs []string) ([]*model.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM files WHERE folder_id IN (?)`, folderIDs)
	if err != nil {
		return nil, err
	}

	var files []*model.File
	err = r.db.Select(&files, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) TrashedByOwner(ownerID string) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE owner_id = $1 AND is_trashed = TRUE ORDER BY trashed_at DESC`

	err := r.db.Select(&files, query, ownerID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// SetCurrentVersion repoints the file at a new current version.
func (r *fileRepository) SetCurrentVersion(id, storagePath string, sizeBytes int64, checksum string, version int, versionID string) error {
	query := `UPDATE files
	          SET storage_path = $1, size_bytes = $2, checksum = $3, version = $4, current_version_id = $5, updated_at = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query, storagePath, sizeBytes, checksum, version, versionID, time.Now(), id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

func (r *fileRepository) Delete(id string) error {
	query := `DELETE FROM files WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrFileNotFound)
}

func (r *fileRepository) DeleteIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`DELETE FROM files WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(r.db.Rebind(query), args...)
	return err
}

func (r *fileRepository) Search(params SearchParams) ([]*model.File, error) {
	conditions := []string{"is_trashed = FALSE"}
	var args []any

	if params.OwnerID != "" {
		args = append(args, params.OwnerID)
		conditions = append(conditions, "owner_id = ?")
	}
	if params.Name != "" {
		args = append(args, "%"+strings.ToLower(params.Name)+"%")
		conditions = append(conditions, "LOWER(name) LIKE ?")
	}
	if params.MimeType != "" {
		args = append(args, params.MimeType)
		conditions = append(conditions, "mime_type = ?")
	}
	if params.FolderID != "" {
		args = append(args, params.FolderID)
		conditions = append(conditions, "folder_id = ?")
	}
	if params.Starred {
		conditions = append(conditions, "is_starred = TRUE")
	}

	query := `SELECT * FROM files WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY LOWER(name)`

	var files []*model.File
	err := r.db.Select(&files, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// OwnerUsage sums the sizes and counts of every file the owner has not
// permanently purged. Trashed files are included on purpose.
func (r *fileRepository) OwnerUsage(ownerID string) (int64, int64, error) {
	var usage struct {
		Bytes int64 `db:"bytes"`
		Count int64 `db:"count"`
	}
	query := `SELECT COALESCE(SUM(size_bytes), 0) AS bytes, COUNT(*) AS count FROM files WHERE owner_id = $1`

	err := r.db.Get(&usage, query, ownerID)
	if err != nil {
		return 0, 0, err
	}

	return usage.Bytes, usage.Count, nil
}

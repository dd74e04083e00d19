package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrVersionNotFound = errors.New("file version not found")
)

// VersionRepository manages the append-only per-file version chain.
// There is deliberately no update or single-row delete: history is
// immutable and rows only disappear with their file (cascade).
type VersionRepository interface {
	Create(version *model.FileVersion) error
	ByID(fileID, versionID string) (*model.FileVersion, error)
	ByFile(fileID string) ([]*model.FileVersion, error)
	PathsByFile(fileID string) ([]string, error)
	PathsByFiles(fileIDs []string) ([]string, error)
	AllPaths() ([]string, error)
}

type versionRepository struct {
	db *sqlx.DB
}

func NewVersionRepository(db *sqlx.DB) *versionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Create(version *model.FileVersion) error {
	query := `INSERT INTO file_versions (id, file_id, version_number, bucket, storage_path, size_bytes, checksum, change_summary, created_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		version.ID,
		version.FileID,
		version.VersionNumber,
		version.Bucket,
		version.StoragePath,
		version.SizeBytes,
		version.Checksum,
		version.ChangeSummary,
		version.CreatedAt,
		version.CreatedBy,
	)

	return err
}

func (r *versionRepository) ByID(fileID, versionID string) (*model.FileVersion, error) {
	version := &model.FileVersion{}
	query := `SELECT * FROM file_versions WHERE id = $1 AND file_id = $2`

	err := r.db.Get(version, query, versionID, fileID)
	if err == sql.ErrNoRows {
		return nil, ErrVersionNotFound
	}

	return version, err
}

func (r *versionRepository) ByFile(fileID string) ([]*model.FileVersion, error) {
	var versions []*model.FileVersion
	query := `SELECT * FROM file_versions WHERE file_id = $1 ORDER BY version_number`

	err := r.db.Select(&versions, query, fileID)
	if err != nil {
		return nil, err
	}

	return versions, nil
}

// PathsByFile returns every storage path the file's history points at,
// for purge-time object cleanup.
func (r *versionRepository) PathsByFile(fileID string) ([]string, error) {
	var paths []string
	query := `SELECT storage_path FROM file_versions WHERE file_id = $1`

	err := r.db.Select(&paths, query, fileID)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (r *versionRepository) PathsByFiles(fileIDs []string) ([]string, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT storage_path FROM file_versions WHERE file_id IN (?)`, fileIDs)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = r.db.Select(&paths, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// AllPaths returns every storage path referenced by any version row.
// Used by the orphan sweep to tell live objects from leaked ones.
func (r *versionRepository) AllPaths() ([]string, error) {
	var paths []string
	query := `SELECT storage_path FROM file_versions`

	err := r.db.Select(&paths, query)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

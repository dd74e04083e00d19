package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

var (
	ErrShareNotFound = errors.New("share not found")
)

// ShareRepository stores tokenized access grants. Rows are never
// deleted; revocation flips is_active so the audit trail is retained.
type ShareRepository interface {
	Create(share *model.FileShare) error
	ByToken(token string) (*model.FileShare, error)
	ByCreator(userID string) ([]*model.FileShare, error)
	IncrementDownloads(id string) error
	Revoke(id string) error
}

type shareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *shareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(share *model.FileShare) error {
	query := `INSERT INTO file_shares (id, token, file_id, folder_id, share_type, permission, password_hash,
	                                   expires_at, max_downloads, download_count, is_active, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(query,
		share.ID,
		share.Token,
		share.FileID,
		share.FolderID,
		share.ShareType,
		share.Permission,
		share.PasswordHash,
		share.ExpiresAt,
		share.MaxDownloads,
		share.DownloadCount,
		share.IsActive,
		share.CreatedBy,
		share.CreatedAt,
	)

	return err
}

func (r *shareRepository) ByToken(token string) (*model.FileShare, error) {
	share := &model.FileShare{}
	query := `SELECT * FROM file_shares WHERE token = $1`

	err := r.db.Get(share, query, token)
	if err == sql.ErrNoRows {
		return nil, ErrShareNotFound
	}

	return share, err
}

func (r *shareRepository) ByCreator(userID string) ([]*model.FileShare, error) {
	var shares []*model.FileShare
	query := `SELECT * FROM file_shares WHERE created_by = $1 ORDER BY created_at DESC`

	err := r.db.Select(&shares, query, userID)
	if err != nil {
		return nil, err
	}

	return shares, nil
}

func (r *shareRepository) IncrementDownloads(id string) error {
	query := `UPDATE file_shares SET download_count = download_count + 1 WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrShareNotFound)
}

func (r *shareRepository) Revoke(id string) error {
	query := `UPDATE file_shares SET is_active = FALSE WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	return checkFound(result, ErrShareNotFound)
}

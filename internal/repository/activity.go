package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/model"
)

type ActivityRepository interface {
	Create(activity *model.FileActivity) error
	ByFile(fileID string, limit int) ([]*model.FileActivity, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *activityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(activity *model.FileActivity) error {
	query := `INSERT INTO file_activity (id, file_id, folder_id, user_id, action, details, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		activity.ID,
		activity.FileID,
		activity.FolderID,
		activity.UserID,
		activity.Action,
		activity.Details,
		activity.CreatedAt,
	)

	return err
}

func (r *activityRepository) ByFile(fileID string, limit int) ([]*model.FileActivity, error) {
	var activities []*model.FileActivity
	query := `SELECT * FROM file_activity WHERE file_id = $1 ORDER BY created_at DESC LIMIT $2`

	err := r.db.Select(&activities, query, fileID, limit)
	if err != nil {
		return nil, err
	}

	return activities, nil
}

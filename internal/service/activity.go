package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
)

// ActivityService writes the append-only audit trail. Every write is
// best effort: a failed insert is logged and swallowed so it can never
// abort the operation being audited.
type ActivityService struct {
	activityRepo repository.ActivityRepository
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

func (s *ActivityService) Record(userID, action string, fileID, folderID *string, details model.JSONMap) {
	activity := &model.FileActivity{
		ID:        uuid.New().String(),
		FileID:    fileID,
		FolderID:  folderID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	err := s.activityRepo.Create(activity)
	if err != nil {
		slog.Warn("failed to record file activity", "error", err, "action", action, "user_id", userID)
	}
}

func (s *ActivityService) ForFile(fileID string, limit int) ([]*model.FileActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.activityRepo.ByFile(fileID, limit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
	"github.com/orbitdrive/orbitdrive/internal/validation"
)

// FileService covers single-file operations outside the upload and
// trash pipelines: rename, move, star, download URLs, search.
type FileService struct {
	fileRepo      repository.FileRepository
	folderRepo    repository.FolderRepository
	storage       storage.Storage
	permissions   *PermissionService
	activity      *ActivityService
	hub           *realtime.Hub
	presignExpiry time.Duration
}

func NewFileService(
	fileRepo repository.FileRepository,
	folderRepo repository.FolderRepository,
	st storage.Storage,
	permissions *PermissionService,
	activity *ActivityService,
	hub *realtime.Hub,
	presignExpiry time.Duration,
) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		folderRepo:    folderRepo,
		storage:       st,
		permissions:   permissions,
		activity:      activity,
		hub:           hub,
		presignExpiry: presignExpiry,
	}
}

func (s *FileService) ByID(callerID, fileID string) (*model.File, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	err = s.authorize(callerID, file, model.PermissionView)
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (s *FileService) Rename(callerID, fileID, name string) (*model.File, error) {
	err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	err = s.authorize(callerID, file, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	err = s.fileRepo.Rename(fileID, name)
	if err != nil {
		return nil, err
	}
	file.Name = name

	s.activity.Record(callerID, model.ActivityRename, &fileID, file.FolderID, model.JSONMap{"name": name})
	s.publishUpdate(file)

	return file, nil
}

// Move refiles a file into another folder, or to the root scope when
// folderID is nil.
func (s *FileService) Move(callerID, fileID string, folderID *string) (*model.File, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	err = s.authorize(callerID, file, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		_, err = s.folderRepo.ByID(*folderID)
		if err != nil {
			if errors.Is(err, repository.ErrFolderNotFound) {
				return nil, ErrInvalidMoveTarget
			}
			return nil, err
		}

		err = s.permissions.Check(callerID, *folderID, model.PermissionEdit)
		if err != nil {
			return nil, err
		}
	}

	err = s.fileRepo.Move(fileID, folderID)
	if err != nil {
		return nil, err
	}
	file.FolderID = folderID

	s.activity.Record(callerID, model.ActivityMove, &fileID, folderID, nil)
	s.publishUpdate(file)

	return file, nil
}

func (s *FileService) SetStarred(callerID, fileID string, starred bool) (*model.File, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	err = s.authorize(callerID, file, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	err = s.fileRepo.SetStarred(fileID, starred)
	if err != nil {
		return nil, err
	}
	file.IsStarred = starred

	s.activity.Record(callerID, model.ActivityStar, &fileID, file.FolderID, model.JSONMap{"starred": starred})
	s.publishUpdate(file)

	return file, nil
}

// DownloadURL returns a signed URL for the file's current content.
func (s *FileService) DownloadURL(ctx context.Context, callerID, fileID string) (string, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return "", err
	}

	err = s.authorize(callerID, file, model.PermissionView)
	if err != nil {
		return "", err
	}

	url, err := s.storage.PresignedURL(ctx, file.StoragePath, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign download URL: %w", err)
	}

	s.activity.Record(callerID, model.ActivityDownload, &fileID, file.FolderID, nil)

	return url, nil
}

// Search matches non-trashed files by name substring and filters,
// scoped to the caller's own files.
func (s *FileService) Search(callerID string, params repository.SearchParams) ([]*model.File, error) {
	params.OwnerID = callerID
	return s.fileRepo.Search(params)
}

// authorize checks file access: the owner may do anything, others need
// a folder grant at the wanted level.
func (s *FileService) authorize(callerID string, file *model.File, want string) error {
	if file.OwnerID == callerID {
		return nil
	}
	if file.FolderID == nil {
		return ErrUnauthorized
	}
	return s.permissions.Check(callerID, *file.FolderID, want)
}

func (s *FileService) publishUpdate(file *model.File) {
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFile, Op: model.EventOpUpdate, OwnerID: file.OwnerID, Row: file,
	})
}

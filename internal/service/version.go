package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

// VersionService manages the append-only version chain of each file.
type VersionService struct {
	fileRepo    repository.FileRepository
	versionRepo repository.VersionRepository
	storage     storage.Storage
	permissions *PermissionService
	activity    *ActivityService
	hub         *realtime.Hub
}

func NewVersionService(
	fileRepo repository.FileRepository,
	versionRepo repository.VersionRepository,
	st storage.Storage,
	permissions *PermissionService,
	activity *ActivityService,
	hub *realtime.Hub,
) *VersionService {
	return &VersionService{
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		storage:     st,
		permissions: permissions,
		activity:    activity,
		hub:         hub,
	}
}

// Versions lists a file's history, oldest first.
func (s *VersionService) Versions(callerID, fileID string) ([]*model.FileVersion, error) {
	_, err := s.authorizedFile(callerID, fileID, model.PermissionView)
	if err != nil {
		return nil, err
	}

	return s.versionRepo.ByFile(fileID)
}

// RestoreVersion makes an old version current again by appending, never
// by rewriting: the old object is copied to a fresh path, a new version
// row is appended at currentVersion+1, and the file record repointed.
// Every prior version stays queryable.
func (s *VersionService) RestoreVersion(ctx context.Context, callerID, fileID, versionID string) (*model.File, error) {
	file, err := s.authorizedFile(callerID, fileID, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	target, err := s.versionRepo.ByID(fileID, versionID)
	if err != nil {
		return nil, err
	}

	// Copy, never move or alias: the restored version's object must
	// survive any later purge of the original.
	newPath := restoredObjectPath(target.StoragePath)
	err = s.storage.Copy(ctx, target.StoragePath, newPath)
	if err != nil {
		return nil, fmt.Errorf("failed to copy version object: %w", err)
	}

	newVersion := &model.FileVersion{
		ID:            uuid.New().String(),
		FileID:        fileID,
		VersionNumber: file.Version + 1,
		Bucket:        target.Bucket,
		StoragePath:   newPath,
		SizeBytes:     target.SizeBytes,
		Checksum:      target.Checksum,
		ChangeSummary: fmt.Sprintf("Restored from version %d", target.VersionNumber),
		CreatedAt:     time.Now(),
		CreatedBy:     callerID,
	}

	err = s.versionRepo.Create(newVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to append version: %w", err)
	}

	err = s.fileRepo.SetCurrentVersion(fileID, newPath, target.SizeBytes, target.Checksum, newVersion.VersionNumber, newVersion.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to repoint file at new version: %w", err)
	}

	file.StoragePath = newPath
	file.SizeBytes = target.SizeBytes
	file.Checksum = target.Checksum
	file.Version = newVersion.VersionNumber
	file.CurrentVersionID = &newVersion.ID

	s.activity.Record(callerID, model.ActivityVersionRestore, &fileID, file.FolderID,
		model.JSONMap{"restored_from": target.VersionNumber, "new_version": newVersion.VersionNumber})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFile, Op: model.EventOpUpdate, OwnerID: file.OwnerID, Row: file,
	})

	return file, nil
}

// restoredObjectPath derives a fresh key alongside the source object.
func restoredObjectPath(src string) string {
	dir := filepath.Dir(src)
	ext := filepath.Ext(src)
	return fmt.Sprintf("%s/%s%s", dir, uuid.New().String(), ext)
}

func (s *VersionService) authorizedFile(callerID, fileID, want string) (*model.File, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	if file.OwnerID != callerID {
		if file.FolderID == nil {
			return nil, ErrUnauthorized
		}
		err = s.permissions.Check(callerID, *file.FolderID, want)
		if err != nil {
			return nil, err
		}
	}

	return file, nil
}

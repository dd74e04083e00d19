package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

// TrashService drives the file lifecycle
// active → trashed → {restored → active | purged}. Trashed files keep
// their quota weight; only a purge decrements the ledger, through the
// single accounting hook shared by every transition.
type TrashService struct {
	fileRepo    repository.FileRepository
	versionRepo repository.VersionRepository
	storage     storage.Storage
	quota       *QuotaService
	permissions *PermissionService
	activity    *ActivityService
	hub         *realtime.Hub
}

func NewTrashService(
	fileRepo repository.FileRepository,
	versionRepo repository.VersionRepository,
	st storage.Storage,
	quota *QuotaService,
	permissions *PermissionService,
	activity *ActivityService,
	hub *realtime.Hub,
) *TrashService {
	return &TrashService{
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		storage:     st,
		quota:       quota,
		permissions: permissions,
		activity:    activity,
		hub:         hub,
	}
}

// List returns the owner's trashed files, newest first.
func (s *TrashService) List(ownerID string) ([]*model.File, error) {
	return s.fileRepo.TrashedByOwner(ownerID)
}

// Trash soft-deletes a file. Quota is untouched: the bytes are still
// held until a purge.
func (s *TrashService) Trash(callerID, fileID string) error {
	file, err := s.authorizedFile(callerID, fileID)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.fileRepo.SetTrashed(fileID, true, &now)
	if err != nil {
		return err
	}
	file.IsTrashed = true
	file.TrashedAt = &now

	s.accounting(file, model.ActivityTrash, callerID)
	return nil
}

// Restore brings a trashed file back to active.
func (s *TrashService) Restore(callerID, fileID string) error {
	file, err := s.authorizedFile(callerID, fileID)
	if err != nil {
		return err
	}
	if !file.IsTrashed {
		return ErrNotTrashed
	}

	err = s.fileRepo.SetTrashed(fileID, false, nil)
	if err != nil {
		return err
	}
	file.IsTrashed = false
	file.TrashedAt = nil

	s.accounting(file, model.ActivityRestore, callerID)
	return nil
}

// Purge permanently deletes a trashed file: objects removed, row
// deleted, quota decremented by exactly the file's size.
func (s *TrashService) Purge(ctx context.Context, callerID, fileID string) error {
	file, err := s.authorizedFile(callerID, fileID)
	if err != nil {
		return err
	}
	if !file.IsTrashed {
		return ErrNotTrashed
	}

	paths, err := s.versionRepo.PathsByFile(fileID)
	if err != nil {
		return fmt.Errorf("failed to collect version paths: %w", err)
	}

	// Best-effort storage reclamation, strict metadata cleanup
	err = s.storage.Remove(ctx, paths)
	if err != nil {
		slog.Error("failed to remove objects during purge", "error", err, "file_id", fileID)
	}

	err = s.fileRepo.Delete(fileID)
	if err != nil {
		return err
	}

	err = s.quota.Adjust(file.OwnerID, -file.SizeBytes, -1)
	if err != nil {
		slog.Error("failed to decrement quota after purge", "error", err, "owner_id", file.OwnerID)
	}

	s.activity.Record(callerID, model.ActivityPurge, &fileID, file.FolderID, model.JSONMap{"size_bytes": file.SizeBytes})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFile, Op: model.EventOpDelete, OwnerID: file.OwnerID, Row: file,
	})

	return nil
}

// EmptyTrash purges everything in the owner's trash: objects batch
// removed, rows batch deleted, one aggregate quota decrement. Returns
// the number of files actually deleted.
func (s *TrashService) EmptyTrash(ctx context.Context, ownerID string) (int, error) {
	files, err := s.fileRepo.TrashedByOwner(ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list trash: %w", err)
	}
	if len(files) == 0 {
		return 0, nil
	}

	var totalBytes int64
	ids := make([]string, 0, len(files))
	for _, f := range files {
		totalBytes += f.SizeBytes
		ids = append(ids, f.ID)
	}

	paths, err := s.versionRepo.PathsByFiles(ids)
	if err != nil {
		return 0, fmt.Errorf("failed to collect version paths: %w", err)
	}

	err = s.storage.Remove(ctx, paths)
	if err != nil {
		slog.Error("failed to remove objects during empty trash", "error", err, "owner_id", ownerID, "objects", len(paths))
	}

	err = s.fileRepo.DeleteIDs(ids)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trashed rows: %w", err)
	}

	err = s.quota.Adjust(ownerID, -totalBytes, -int64(len(files)))
	if err != nil {
		slog.Error("failed to decrement quota after empty trash", "error", err, "owner_id", ownerID)
	}

	for _, f := range files {
		s.hub.Publish(model.ChangeEvent{
			Table: model.EventTableFile, Op: model.EventOpDelete, OwnerID: ownerID, Row: f,
		})
	}
	s.activity.Record(ownerID, model.ActivityPurge, nil, nil, model.JSONMap{"files_deleted": len(files), "bytes_freed": totalBytes})

	return len(files), nil
}

// accounting is the shared hook for non-purge transitions: audit row
// plus change event, never a quota mutation.
func (s *TrashService) accounting(file *model.File, action, callerID string) {
	s.activity.Record(callerID, action, &file.ID, file.FolderID, nil)
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFile, Op: model.EventOpUpdate, OwnerID: file.OwnerID, Row: file,
	})
}

func (s *TrashService) authorizedFile(callerID, fileID string) (*model.File, error) {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return nil, err
	}

	if file.OwnerID != callerID {
		if file.FolderID == nil {
			return nil, ErrUnauthorized
		}
		err = s.permissions.Check(callerID, *file.FolderID, model.PermissionEdit)
		if err != nil {
			return nil, err
		}
	}

	return file, nil
}

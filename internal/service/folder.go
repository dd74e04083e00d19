package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
	"github.com/orbitdrive/orbitdrive/internal/validation"
)

// FolderService mutates the folder tree: create, rename, move,
// recursive delete.
type FolderService struct {
	folderRepo  repository.FolderRepository
	fileRepo    repository.FileRepository
	versionRepo repository.VersionRepository
	storage     storage.Storage
	quota       *QuotaService
	permissions *PermissionService
	activity    *ActivityService
	hub         *realtime.Hub
	folderLocks *KeyedMutex
}

func NewFolderService(
	folderRepo repository.FolderRepository,
	fileRepo repository.FileRepository,
	versionRepo repository.VersionRepository,
	st storage.Storage,
	quota *QuotaService,
	permissions *PermissionService,
	activity *ActivityService,
	hub *realtime.Hub,
	folderLocks *KeyedMutex,
) *FolderService {
	return &FolderService{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		storage:     st,
		quota:       quota,
		permissions: permissions,
		activity:    activity,
		hub:         hub,
		folderLocks: folderLocks,
	}
}

func (s *FolderService) Create(callerID, name, folderType string, parentID *string) (*model.Folder, error) {
	err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		err = s.permissions.Check(callerID, *parentID, model.PermissionEdit)
		if err != nil {
			return nil, err
		}
		// Verify the parent exists before hanging a child off it
		if _, err := s.folderRepo.ByID(*parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &model.Folder{
		ID:         uuid.New().String(),
		Name:       name,
		Slug:       validation.Slugify(name),
		ParentID:   parentID,
		OwnerID:    callerID,
		FolderType: folderType,
		IsRoot:     parentID == nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if folder.FolderType == "" {
		folder.FolderType = model.FolderTypePersonal
	}

	err = s.folderRepo.Create(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.activity.Record(callerID, model.ActivityFolderCreate, nil, &folder.ID, model.JSONMap{"name": name})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFolder, Op: model.EventOpInsert, OwnerID: folder.OwnerID, Row: folder,
	})

	return folder, nil
}

func (s *FolderService) Rename(callerID, folderID, name string) (*model.Folder, error) {
	err := validation.ValidateName(name)
	if err != nil {
		return nil, err
	}

	err = s.permissions.Check(callerID, folderID, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	err = s.folderRepo.Rename(folderID, name, validation.Slugify(name))
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.ByID(folderID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(callerID, model.ActivityRename, nil, &folderID, model.JSONMap{"name": name})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFolder, Op: model.EventOpUpdate, OwnerID: folder.OwnerID, Row: folder,
	})

	return folder, nil
}

// Move reparents a folder. Moving a folder into itself or one of its
// descendants would cut the subtree loose as a cycle, so the target's
// ancestor chain is checked first.
func (s *FolderService) Move(callerID, folderID string, newParentID *string) (*model.Folder, error) {
	err := s.permissions.Check(callerID, folderID, model.PermissionEdit)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return nil, ErrCyclicMove
		}

		target, err := s.folderRepo.ByID(*newParentID)
		if err != nil {
			if errors.Is(err, repository.ErrFolderNotFound) {
				return nil, ErrInvalidMoveTarget
			}
			return nil, err
		}

		err = s.permissions.Check(callerID, target.ID, model.PermissionEdit)
		if err != nil {
			return nil, err
		}

		isDescendant, err := s.isDescendant(target.ID, folderID)
		if err != nil {
			return nil, err
		}
		if isDescendant {
			return nil, ErrCyclicMove
		}
	}

	err = s.folderRepo.Move(folderID, newParentID)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.ByID(folderID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(callerID, model.ActivityMove, nil, &folderID, nil)
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFolder, Op: model.EventOpUpdate, OwnerID: folder.OwnerID, Row: folder,
	})

	return folder, nil
}

// isDescendant reports whether candidate sits inside ancestor's
// subtree, walking up from candidate with a visited-set guard.
func (s *FolderService) isDescendant(candidate, ancestor string) (bool, error) {
	visited := make(map[string]bool)
	current := candidate

	for current != "" && !visited[current] {
		visited[current] = true

		if current == ancestor {
			return true, nil
		}

		folder, err := s.folderRepo.ByID(current)
		if err != nil {
			return false, err
		}
		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	return false, nil
}

// Delete removes a folder and everything beneath it. Descendant files
// are collected depth-first, their objects batch-removed best effort,
// quota decremented once per owner, then the root row deleted; the
// cascade constraint clears the descendant rows.
func (s *FolderService) Delete(ctx context.Context, callerID, folderID string) error {
	err := s.permissions.Check(callerID, folderID, model.PermissionAdmin)
	if err != nil {
		return err
	}

	folder, err := s.folderRepo.ByID(folderID)
	if err != nil {
		return err
	}

	folderIDs, err := s.collectSubtree(folderID)
	if err != nil {
		return err
	}

	// Hold every folder's lock so an upload in flight anywhere in the
	// subtree commits before its rows are cascaded away. Sorted order
	// keeps two overlapping deletes from deadlocking each other.
	sortedIDs := append([]string(nil), folderIDs...)
	sort.Strings(sortedIDs)
	for _, id := range sortedIDs {
		unlock := s.folderLocks.Lock(id)
		defer unlock()
	}

	files, err := s.fileRepo.AllInFolders(folderIDs)
	if err != nil {
		return fmt.Errorf("failed to collect descendant files: %w", err)
	}

	// Every object the subtree's version history points at
	fileIDs := make([]string, 0, len(files))
	for _, f := range files {
		fileIDs = append(fileIDs, f.ID)
	}
	paths, err := s.versionRepo.PathsByFiles(fileIDs)
	if err != nil {
		return fmt.Errorf("failed to collect version paths: %w", err)
	}

	// Best-effort storage reclamation: a partial object-store failure
	// is logged but never blocks the metadata cleanup.
	if len(paths) > 0 {
		err = s.storage.Remove(ctx, paths)
		if err != nil {
			slog.Error("failed to remove objects during folder delete", "error", err, "folder_id", folderID, "objects", len(paths))
		}
	}

	err = s.folderRepo.Delete(folderID)
	if err != nil {
		return err
	}

	// One aggregate decrement per owner
	for ownerID, agg := range aggregateByOwner(files) {
		err = s.quota.Adjust(ownerID, -agg.bytes, -agg.count)
		if err != nil {
			slog.Error("failed to decrement quota after folder delete", "error", err, "owner_id", ownerID)
		}
	}

	s.activity.Record(callerID, model.ActivityFolderDelete, nil, &folderID, model.JSONMap{"files_deleted": len(files)})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFolder, Op: model.EventOpDelete, OwnerID: folder.OwnerID, Row: folder,
	})

	return nil
}

// collectSubtree returns the folder and all its descendants, found
// depth-first. The visited set keeps a malformed cycle from recursing
// forever.
func (s *FolderService) collectSubtree(folderID string) ([]string, error) {
	var ids []string
	visited := make(map[string]bool)

	var walk func(id string) error
	walk = func(id string) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		ids = append(ids, id)

		children, err := s.folderRepo.Children(id)
		if err != nil {
			return fmt.Errorf("failed to list children of %s: %w", id, err)
		}
		for _, child := range children {
			if err := walk(child.ID); err != nil {
				return err
			}
		}
		return nil
	}

	err := walk(folderID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

type ownerAggregate struct {
	bytes int64
	count int64
}

func aggregateByOwner(files []*model.File) map[string]ownerAggregate {
	aggs := make(map[string]ownerAggregate)
	for _, f := range files {
		agg := aggs[f.OwnerID]
		agg.bytes += f.SizeBytes
		agg.count++
		aggs[f.OwnerID] = agg
	}
	return aggs
}

package service

import (
	"fmt"

	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
)

// FolderView is one resolved navigation step: the folder itself, its
// direct children, and the breadcrumb trail back to the root.
type FolderView struct {
	Folder      *model.Folder      `json:"folder,omitempty"` // nil at the root level
	Folders     []*model.Folder    `json:"folders"`
	Files       []*model.File      `json:"files"`
	Breadcrumbs []model.Breadcrumb `json:"breadcrumbs"`
}

// NavigatorService resolves folders and rebuilds breadcrumb trails.
type NavigatorService struct {
	folderRepo  repository.FolderRepository
	fileRepo    repository.FileRepository
	permissions *PermissionService
}

func NewNavigatorService(folderRepo repository.FolderRepository, fileRepo repository.FileRepository, permissions *PermissionService) *NavigatorService {
	return &NavigatorService{
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
		permissions: permissions,
	}
}

// Browse resolves a folder and lists its direct children. A nil
// folderID lists the caller's root folders, ordered by folder type then
// name.
func (s *NavigatorService) Browse(callerID string, folderID *string) (*FolderView, error) {
	if folderID == nil {
		roots, err := s.folderRepo.Roots(callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list root folders: %w", err)
		}

		files, err := s.fileRepo.InFolder(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list unfiled files: %w", err)
		}
		files = ownedBy(files, callerID)

		return &FolderView{Folders: roots, Files: files, Breadcrumbs: []model.Breadcrumb{}}, nil
	}

	err := s.permissions.Check(callerID, *folderID, model.PermissionView)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.ByID(*folderID)
	if err != nil {
		return nil, err
	}

	children, err := s.folderRepo.Children(folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	files, err := s.fileRepo.InFolder(&folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	crumbs, err := s.Breadcrumbs(folder.ID)
	if err != nil {
		return nil, err
	}

	return &FolderView{Folder: folder, Folders: children, Files: files, Breadcrumbs: crumbs}, nil
}

// Breadcrumbs walks parent pointers up from the folder and returns the
// trail ordered root first. A visited set guards against cyclic or
// otherwise malformed parent chains: the walk stops at the first repeat
// instead of looping.
func (s *NavigatorService) Breadcrumbs(folderID string) ([]model.Breadcrumb, error) {
	var trail []model.Breadcrumb
	visited := make(map[string]bool)
	current := folderID

	for current != "" && !visited[current] {
		visited[current] = true

		folder, err := s.folderRepo.ByID(current)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve breadcrumb folder %s: %w", current, err)
		}

		trail = append(trail, model.Breadcrumb{ID: folder.ID, Name: folder.Name, Slug: folder.Slug})

		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	// Reverse so the root comes first
	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}

	return trail, nil
}

func ownedBy(files []*model.File, ownerID string) []*model.File {
	owned := files[:0]
	for _, f := range files {
		if f.OwnerID == ownerID {
			owned = append(owned, f)
		}
	}
	return owned
}

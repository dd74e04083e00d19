package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
)

// PermissionService stores folder grants and answers permission checks.
// A check passes for the folder's owner, a direct grant, or a grant on
// the nearest ancestor (inherited).
type PermissionService struct {
	permRepo   repository.PermissionRepository
	folderRepo repository.FolderRepository
	activity   *ActivityService
}

func NewPermissionService(permRepo repository.PermissionRepository, folderRepo repository.FolderRepository, activity *ActivityService) *PermissionService {
	return &PermissionService{
		permRepo:   permRepo,
		folderRepo: folderRepo,
		activity:   activity,
	}
}

func (s *PermissionService) Grant(grantedBy, folderID, userID, permission string, expiresAt *time.Time) (*model.FolderPermission, error) {
	if !model.PermissionAtLeast(permission, model.PermissionView) {
		return nil, fmt.Errorf("unknown permission level %q", permission)
	}

	err := s.Check(grantedBy, folderID, model.PermissionAdmin)
	if err != nil {
		return nil, err
	}

	perm := &model.FolderPermission{
		ID:         uuid.New().String(),
		FolderID:   folderID,
		UserID:     userID,
		Permission: permission,
		Inherited:  false,
		GrantedBy:  grantedBy,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}

	err = s.permRepo.Grant(perm)
	if err != nil {
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}

	return perm, nil
}

func (s *PermissionService) Revoke(revokedBy, folderID, userID string) error {
	err := s.Check(revokedBy, folderID, model.PermissionAdmin)
	if err != nil {
		return err
	}

	return s.permRepo.Revoke(folderID, userID)
}

func (s *PermissionService) ForFolder(callerID, folderID string) ([]*model.FolderPermission, error) {
	err := s.Check(callerID, folderID, model.PermissionAdmin)
	if err != nil {
		return nil, err
	}

	return s.permRepo.ForFolder(folderID)
}

// Check verifies the user holds at least the wanted level on the
// folder, walking parent pointers upward for inherited grants. The walk
// carries a visited set so a malformed cyclic parent chain terminates
// instead of looping.
func (s *PermissionService) Check(userID, folderID, want string) error {
	visited := make(map[string]bool)
	current := folderID

	for current != "" && !visited[current] {
		visited[current] = true

		folder, err := s.folderRepo.ByID(current)
		if err != nil {
			if errors.Is(err, repository.ErrFolderNotFound) {
				return ErrUnauthorized
			}
			return fmt.Errorf("failed to load folder for permission check: %w", err)
		}

		// The owner holds admin on their whole tree
		if folder.OwnerID == userID {
			return nil
		}

		perm, err := s.permRepo.ForFolderUser(current, userID)
		if err != nil && !errors.Is(err, repository.ErrPermissionNotFound) {
			return fmt.Errorf("failed to load permission: %w", err)
		}
		if perm != nil && !permExpired(perm) && model.PermissionAtLeast(perm.Permission, want) {
			return nil
		}

		if folder.ParentID == nil {
			break
		}
		current = *folder.ParentID
	}

	return ErrUnauthorized
}

func permExpired(perm *model.FolderPermission) bool {
	return perm.ExpiresAt != nil && time.Now().After(*perm.ExpiresAt)
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// shareTokenBytes sizes the random token; 32 bytes keeps the link
// unguessable.
const shareTokenBytes = 32

// CreateShareParams configures a new share link.
type CreateShareParams struct {
	FileID       *string
	FolderID     *string
	Permission   string
	Password     string // optional
	ExpiresAt    *time.Time
	MaxDownloads *int
}

// ShareService issues and resolves tokenized access grants.
type ShareService struct {
	shareRepo     repository.ShareRepository
	fileRepo      repository.FileRepository
	folderRepo    repository.FolderRepository
	permissions   *PermissionService
	activity      *ActivityService
	storage       storage.Storage
	presignExpiry time.Duration
}

func NewShareService(
	shareRepo repository.ShareRepository,
	fileRepo repository.FileRepository,
	folderRepo repository.FolderRepository,
	permissions *PermissionService,
	activity *ActivityService,
	st storage.Storage,
	presignExpiry time.Duration,
) *ShareService {
	return &ShareService{
		shareRepo:     shareRepo,
		fileRepo:      fileRepo,
		folderRepo:    folderRepo,
		permissions:   permissions,
		activity:      activity,
		storage:       st,
		presignExpiry: presignExpiry,
	}
}

// Create issues a share link for a file or folder.
func (s *ShareService) Create(callerID string, params CreateShareParams) (*model.FileShare, error) {
	if (params.FileID == nil) == (params.FolderID == nil) {
		return nil, fmt.Errorf("share must target exactly one file or folder")
	}

	shareType := model.ShareTypeFile
	if params.FolderID != nil {
		shareType = model.ShareTypeFolder
	}

	// The sharer needs edit on the target
	if params.FileID != nil {
		file, err := s.fileRepo.ByID(*params.FileID)
		if err != nil {
			return nil, err
		}
		if file.OwnerID != callerID {
			if file.FolderID == nil {
				return nil, ErrUnauthorized
			}
			if err := s.permissions.Check(callerID, *file.FolderID, model.PermissionEdit); err != nil {
				return nil, err
			}
		}
	} else {
		if _, err := s.folderRepo.ByID(*params.FolderID); err != nil {
			return nil, err
		}
		if err := s.permissions.Check(callerID, *params.FolderID, model.PermissionEdit); err != nil {
			return nil, err
		}
	}

	permission := params.Permission
	if permission == "" {
		permission = model.SharePermissionView
	}

	var passwordHash *string
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	share := &model.FileShare{
		ID:           uuid.New().String(),
		Token:        token,
		FileID:       params.FileID,
		FolderID:     params.FolderID,
		ShareType:    shareType,
		Permission:   permission,
		PasswordHash: passwordHash,
		ExpiresAt:    params.ExpiresAt,
		MaxDownloads: params.MaxDownloads,
		IsActive:     true,
		CreatedBy:    callerID,
		CreatedAt:    time.Now(),
	}

	err = s.shareRepo.Create(share)
	if err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	s.activity.Record(callerID, model.ActivityShareCreate, params.FileID, params.FolderID, model.JSONMap{"share_type": shareType})

	return share, nil
}

// Resolve validates a token and counts the access against the download
// cap. Revoked, expired, and exhausted shares all resolve to
// ErrShareInactive so callers cannot distinguish why a link died.
func (s *ShareService) Resolve(token, password string) (*model.FileShare, error) {
	share, err := s.shareRepo.ByToken(token)
	if err != nil {
		return nil, err
	}

	if !share.IsActive || share.Expired(time.Now()) || share.Exhausted() {
		return nil, ErrShareInactive
	}

	if share.PasswordHash != nil {
		err = bcrypt.CompareHashAndPassword([]byte(*share.PasswordHash), []byte(password))
		if err != nil {
			return nil, ErrSharePassword
		}
	}

	err = s.shareRepo.IncrementDownloads(share.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count download: %w", err)
	}
	share.DownloadCount++

	return share, nil
}

// Download resolves a file-share token and returns a signed URL for the
// shared file's current content. Folder shares have no single object to
// sign and resolve to ErrShareInactive here.
func (s *ShareService) Download(ctx context.Context, token, password string) (string, error) {
	share, err := s.Resolve(token, password)
	if err != nil {
		return "", err
	}
	if share.FileID == nil {
		return "", ErrShareInactive
	}

	file, err := s.fileRepo.ByID(*share.FileID)
	if err != nil {
		return "", err
	}
	if file.IsTrashed {
		return "", ErrShareInactive
	}

	url, err := s.storage.PresignedURL(ctx, file.StoragePath, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign download URL: %w", err)
	}

	s.activity.Record(share.CreatedBy, model.ActivityDownload, share.FileID, file.FolderID, model.JSONMap{"via_share": true})

	return url, nil
}

// Revoke disables a share. The row is kept for the audit trail.
func (s *ShareService) Revoke(callerID, token string) error {
	share, err := s.shareRepo.ByToken(token)
	if err != nil {
		return err
	}

	if share.CreatedBy != callerID {
		return ErrUnauthorized
	}

	err = s.shareRepo.Revoke(share.ID)
	if err != nil && !errors.Is(err, repository.ErrShareNotFound) {
		return err
	}

	s.activity.Record(callerID, model.ActivityShareRevoke, share.FileID, share.FolderID, nil)

	return nil
}

// ByCreator lists every share a user has issued, revoked ones included.
func (s *ShareService) ByCreator(callerID string) ([]*model.FileShare, error) {
	return s.shareRepo.ByCreator(callerID)
}

func generateToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

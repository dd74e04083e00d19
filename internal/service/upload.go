package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
	"github.com/orbitdrive/orbitdrive/internal/validation"
)

// Upload progress states, reported per item during batch uploads.
const (
	UploadStatePending    = "pending"
	UploadStateUploading  = "uploading"
	UploadStateProcessing = "processing"
	UploadStateComplete   = "complete"
	UploadStateError      = "error"
)

// UploadRequest carries one file into the pipeline.
type UploadRequest struct {
	Name     string
	FolderID *string
	MimeType string
	Size     int64
	Body     io.Reader
}

// UploadService runs the upload pipeline: collision-free name, object
// write, metadata commit, quota increment — in that order.
type UploadService struct {
	fileRepo    repository.FileRepository
	versionRepo repository.VersionRepository
	storage     storage.Storage
	bucket      string
	quota       *QuotaService
	permissions *PermissionService
	activity    *ActivityService
	hub         *realtime.Hub
	folderLocks *KeyedMutex
}

func NewUploadService(
	fileRepo repository.FileRepository,
	versionRepo repository.VersionRepository,
	st storage.Storage,
	bucket string,
	quota *QuotaService,
	permissions *PermissionService,
	activity *ActivityService,
	hub *realtime.Hub,
	folderLocks *KeyedMutex,
) *UploadService {
	return &UploadService{
		fileRepo:    fileRepo,
		versionRepo: versionRepo,
		storage:     st,
		bucket:      bucket,
		quota:       quota,
		permissions: permissions,
		activity:    activity,
		hub:         hub,
		folderLocks: folderLocks,
	}
}

// Upload stores one file. On cancellation or a metadata failure after
// the object write, the partial object is deleted and nothing is
// committed.
func (s *UploadService) Upload(ctx context.Context, callerID string, req UploadRequest) (*model.File, error) {
	err := validation.ValidateName(req.Name)
	if err != nil {
		return nil, err
	}

	if req.FolderID != nil {
		err = s.permissions.Check(callerID, *req.FolderID, model.PermissionEdit)
		if err != nil {
			return nil, err
		}
	}

	err = s.quota.CheckCapacity(callerID, req.Size)
	if err != nil {
		return nil, err
	}

	// Serialize against other mutations of the same folder (notably a
	// concurrent recursive delete).
	unlock := s.folderLocks.Lock(folderKey(req.FolderID))
	defer unlock()

	name, err := s.resolveName(req.FolderID, req.Name)
	if err != nil {
		return nil, err
	}

	storagePath := s.objectPath(callerID, req.FolderID, req.Name)

	hasher := sha256.New()
	err = s.storage.Put(ctx, storagePath, io.TeeReader(req.Body, hasher))
	if err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}
	checksum := hex.EncodeToString(hasher.Sum(nil))

	// Cancelled between object write and metadata commit: delete the
	// partial object, commit nothing.
	if err := ctx.Err(); err != nil {
		s.cleanupObject(storagePath)
		return nil, err
	}

	now := time.Now()
	versionID := uuid.New().String()
	file := &model.File{
		ID:               uuid.New().String(),
		Name:             name,
		OriginalName:     req.Name,
		FolderID:         req.FolderID,
		OwnerID:          callerID,
		Bucket:           s.bucket,
		StoragePath:      storagePath,
		MimeType:         req.MimeType,
		SizeBytes:        req.Size,
		Checksum:         checksum,
		Version:          1,
		CurrentVersionID: &versionID,
		Metadata:         model.JSONMap{},
		Tags:             model.StringList{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.fileRepo.Create(file)
	if err != nil {
		s.cleanupObject(storagePath)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	version := &model.FileVersion{
		ID:            versionID,
		FileID:        file.ID,
		VersionNumber: 1,
		Bucket:        s.bucket,
		StoragePath:   storagePath,
		SizeBytes:     req.Size,
		Checksum:      checksum,
		ChangeSummary: "Initial upload",
		CreatedAt:     now,
		CreatedBy:     callerID,
	}
	err = s.versionRepo.Create(version)
	if err != nil {
		// Roll the file row back so no record points at a half-born
		// version chain; the object goes with it.
		if delErr := s.fileRepo.Delete(file.ID); delErr != nil {
			slog.Error("failed to roll back file record", "error", delErr, "file_id", file.ID)
		}
		s.cleanupObject(storagePath)
		return nil, fmt.Errorf("failed to create initial version: %w", err)
	}

	err = s.quota.Adjust(callerID, req.Size, 1)
	if err != nil {
		slog.Error("failed to increment quota after upload", "error", err, "owner_id", callerID, "file_id", file.ID)
	}

	s.activity.Record(callerID, model.ActivityUpload, &file.ID, req.FolderID, model.JSONMap{"name": name, "size_bytes": req.Size})
	s.hub.Publish(model.ChangeEvent{
		Table: model.EventTableFile, Op: model.EventOpInsert, OwnerID: callerID, Row: file,
	})

	return file, nil
}

// cleanupObject removes an object written by an upload that did not
// commit. Failures are logged: a leftover orphan is reclaimed later by
// the sweep job.
func (s *UploadService) cleanupObject(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.storage.Remove(ctx, []string{path})
	if err != nil {
		slog.Error("failed to delete orphaned object", "error", err, "path", path)
	}
}

// objectPath builds the store key: namespaced by owner and folder, with
// an opaque id so display renames never touch the store.
func (s *UploadService) objectPath(ownerID string, folderID *string, name string) string {
	scope := "root"
	if folderID != nil {
		scope = *folderID
	}
	return fmt.Sprintf("owner/%s/%s/%s%s", ownerID, scope, uuid.New().String(), filepath.Ext(name))
}

var suffixPattern = regexp.MustCompile(`^ \((\d+)\)$`)

// resolveName returns a display name that does not collide with any
// non-trashed file in the folder, case-insensitively. "report.pdf"
// becomes "report (1).pdf", then "report (2).pdf", picking one past the
// highest existing suffix.
func (s *UploadService) resolveName(folderID *string, name string) (string, error) {
	existing, err := s.fileRepo.NamesInFolder(folderID)
	if err != nil {
		return "", fmt.Errorf("failed to list folder names: %w", err)
	}

	lower := strings.ToLower(name)
	taken := false
	for _, n := range existing {
		if strings.ToLower(n) == lower {
			taken = true
			break
		}
	}
	if !taken {
		return name, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	lowerBase := strings.ToLower(base)
	lowerExt := strings.ToLower(ext)

	// Highest existing "(N)" suffix for this base
	maxN := 0
	for _, n := range existing {
		lowerN := strings.ToLower(n)
		if !strings.HasSuffix(lowerN, lowerExt) {
			continue
		}
		stem := lowerN[:len(lowerN)-len(lowerExt)]
		if !strings.HasPrefix(stem, lowerBase) {
			continue
		}
		m := suffixPattern.FindStringSubmatch(stem[len(lowerBase):])
		if m == nil {
			continue
		}
		if v, err := strconv.Atoi(m[1]); err == nil && v > maxN {
			maxN = v
		}
	}

	return fmt.Sprintf("%s (%d)%s", base, maxN+1, ext), nil
}

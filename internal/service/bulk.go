package service

import (
	"context"
	"fmt"
	"time"
)

const (
	BulkKindFile   = "file"
	BulkKindFolder = "folder"
)

// BulkItem identifies one member of a mixed file/folder selection.
type BulkItem struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

// BulkError reports one failed item.
type BulkError struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BulkResult aggregates per-item outcomes. Bulk operations are not
// transactional: items succeed or fail independently and nothing is
// rolled back.
type BulkResult struct {
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []BulkError `json:"errors,omitempty"`
}

func (r *BulkResult) record(item BulkItem, err error) {
	if err != nil {
		r.Failed++
		r.Errors = append(r.Errors, BulkError{ID: item.ID, Kind: item.Kind, Message: err.Error()})
		return
	}
	r.Succeeded++
}

// BulkDownload is one signed URL of a bulk download batch.
type BulkDownload struct {
	FileID string `json:"file_id"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BulkService dispatches mixed selections to the single-item
// operations.
type BulkService struct {
	files   *FileService
	folders *FolderService
	trash   *TrashService
	stagger time.Duration
}

func NewBulkService(files *FileService, folders *FolderService, trash *TrashService, stagger time.Duration) *BulkService {
	return &BulkService{
		files:   files,
		folders: folders,
		trash:   trash,
		stagger: stagger,
	}
}

// Move reparents each selected item into the target folder.
func (s *BulkService) Move(ctx context.Context, callerID string, items []BulkItem, targetFolderID *string) *BulkResult {
	result := &BulkResult{}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			result.record(item, err)
			continue
		}

		var err error
		switch item.Kind {
		case BulkKindFile:
			_, err = s.files.Move(callerID, item.ID, targetFolderID)
		case BulkKindFolder:
			_, err = s.folders.Move(callerID, item.ID, targetFolderID)
		default:
			err = fmt.Errorf("unknown item kind %q", item.Kind)
		}
		result.record(item, err)
	}

	return result
}

// Delete trashes each selected file and recursively deletes each
// selected folder.
func (s *BulkService) Delete(ctx context.Context, callerID string, items []BulkItem) *BulkResult {
	result := &BulkResult{}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			result.record(item, err)
			continue
		}

		var err error
		switch item.Kind {
		case BulkKindFile:
			err = s.trash.Trash(callerID, item.ID)
		case BulkKindFolder:
			err = s.folders.Delete(ctx, callerID, item.ID)
		default:
			err = fmt.Errorf("unknown item kind %q", item.Kind)
		}
		result.record(item, err)
	}

	return result
}

// DownloadURLs signs a URL per file, pausing between dispatches. The
// stagger is a rate-limiting heuristic, not a correctness mechanism.
func (s *BulkService) DownloadURLs(ctx context.Context, callerID string, fileIDs []string) []BulkDownload {
	downloads := make([]BulkDownload, 0, len(fileIDs))

	for i, fileID := range fileIDs {
		if i > 0 && s.stagger > 0 {
			select {
			case <-time.After(s.stagger):
			case <-ctx.Done():
				downloads = append(downloads, BulkDownload{FileID: fileID, Error: ctx.Err().Error()})
				continue
			}
		}

		url, err := s.files.DownloadURL(ctx, callerID, fileID)
		if err != nil {
			downloads = append(downloads, BulkDownload{FileID: fileID, Error: err.Error()})
			continue
		}
		downloads = append(downloads, BulkDownload{FileID: fileID, URL: url})
	}

	return downloads
}

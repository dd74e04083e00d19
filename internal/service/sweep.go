package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

// SweepService reclaims orphaned objects: uploads that wrote their
// bytes but never committed metadata leave objects no version row
// points at. A periodic sweep removes them once they are older than a
// grace window, so an upload still in flight is never swept.
type SweepService struct {
	versionRepo repository.VersionRepository
	storage     storage.Storage
	grace       time.Duration
}

func NewSweepService(versionRepo repository.VersionRepository, st storage.Storage, grace time.Duration) *SweepService {
	return &SweepService{
		versionRepo: versionRepo,
		storage:     st,
		grace:       grace,
	}
}

// SweepOrphans removes unreferenced objects under the owner namespace
// and returns how many were deleted.
func (s *SweepService) SweepOrphans(ctx context.Context) (int, error) {
	referenced, err := s.versionRepo.AllPaths()
	if err != nil {
		return 0, fmt.Errorf("failed to load referenced paths: %w", err)
	}

	live := make(map[string]bool, len(referenced))
	for _, p := range referenced {
		live[p] = true
	}

	objects, err := s.storage.List(ctx, "owner/")
	if err != nil {
		return 0, fmt.Errorf("failed to list objects: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	var orphans []string
	for _, obj := range objects {
		if live[obj.Path] {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue // possibly an upload still committing
		}
		orphans = append(orphans, obj.Path)
	}

	if len(orphans) == 0 {
		return 0, nil
	}

	err = s.storage.Remove(ctx, orphans)
	if err != nil {
		return 0, fmt.Errorf("failed to remove orphans: %w", err)
	}

	slog.Info("orphan sweep complete", "removed", len(orphans), "scanned", len(objects))
	return len(orphans), nil
}

package service

import (
	"fmt"

	"github.com/orbitdrive/orbitdrive/internal/model"
	"github.com/orbitdrive/orbitdrive/internal/repository"
)

// QuotaService is the authoritative ledger of per-owner storage usage.
// Adjust is the only mutation path; callers never read-modify-write the
// counters themselves.
type QuotaService struct {
	quotaRepo    repository.QuotaRepository
	fileRepo     repository.FileRepository
	defaultBytes int64
	enforce      bool
}

func NewQuotaService(quotaRepo repository.QuotaRepository, fileRepo repository.FileRepository, defaultBytes int64, enforce bool) *QuotaService {
	return &QuotaService{
		quotaRepo:    quotaRepo,
		fileRepo:     fileRepo,
		defaultBytes: defaultBytes,
		enforce:      enforce,
	}
}

// Adjust applies a usage delta atomically, creating the owner's ledger
// row on first use.
func (s *QuotaService) Adjust(ownerID string, deltaBytes, deltaFiles int64) error {
	err := s.quotaRepo.Ensure(ownerID, s.defaultBytes)
	if err != nil {
		return fmt.Errorf("failed to ensure quota row: %w", err)
	}

	err = s.quotaRepo.Adjust(ownerID, deltaBytes, deltaFiles)
	if err != nil {
		return fmt.Errorf("failed to adjust quota: %w", err)
	}

	return nil
}

// Usage returns the owner's current ledger, creating it if needed.
func (s *QuotaService) Usage(ownerID string) (*model.StorageQuota, error) {
	err := s.quotaRepo.Ensure(ownerID, s.defaultBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure quota row: %w", err)
	}

	return s.quotaRepo.ByOwner(ownerID)
}

// CheckCapacity returns ErrQuotaExceeded when enforcement is on and the
// upload would push usage past the limit. With enforcement off (the
// default) quotas are advisory and this always succeeds.
func (s *QuotaService) CheckCapacity(ownerID string, incomingBytes int64) error {
	if !s.enforce {
		return nil
	}

	quota, err := s.Usage(ownerID)
	if err != nil {
		return err
	}

	if quota.UsedBytes+incomingBytes > quota.QuotaBytes {
		return ErrQuotaExceeded
	}

	return nil
}

// Recalculate rebuilds the counters from the files table. This is the
// reconciliation path for drift between the ledger and reality; the
// ledger remains authoritative between runs.
func (s *QuotaService) Recalculate(ownerID string) (*model.StorageQuota, error) {
	err := s.quotaRepo.Ensure(ownerID, s.defaultBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure quota row: %w", err)
	}

	bytes, count, err := s.fileRepo.OwnerUsage(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum owner usage: %w", err)
	}

	err = s.quotaRepo.Set(ownerID, bytes, count)
	if err != nil {
		return nil, fmt.Errorf("failed to store recalculated usage: %w", err)
	}

	return s.quotaRepo.ByOwner(ownerID)
}

package integrity

import (
	"context"
	"errors"

	"deck-sync/core/record"
	"deck-sync/core/storage"
	"deck-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options wires the service to storage, the record database and the sync settings.
type Options struct {
	Client storage.Client
	Bucket string
	Region string
	// Folders are the prefixes that must exist in the bucket.
	Folders []string
	// MediaPrefix is where note media is stored.
	MediaPrefix string
	// Sources returns the configured sources.
	Sources func() ([]record.SourceSpec, error)
	// ArchiveKey maps a source id to its export archive key.
	ArchiveKey func(sourceID string) string
	DB         *gorm.DB
	Models     []interface{}
	Notes      checks.NoteLister
	Logger     *zap.Logger
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opts: opts, logger: logger}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.opts.Client, s.opts.Bucket, s.opts.Folders)
}

// FixStructure creates the bucket if needed and then the missing folders.
// It returns the folders it created.
func (s *Service) FixStructure(ctx context.Context) ([]string, error) {
	missing, err := s.CheckStructure(ctx)
	if errors.Is(err, checks.ErrBucketMissing) {
		if err := checks.CreateBucket(ctx, s.opts.Client, s.opts.Bucket, s.opts.Region, s.logger); err != nil {
			return nil, err
		}
		missing, err = s.opts.Folders, nil
	}
	if err != nil {
		return nil, err
	}
	if err := checks.FixStructure(ctx, s.opts.Client, s.opts.Bucket, s.logger, missing); err != nil {
		return nil, err
	}
	return missing, nil
}

// CheckArchives reports configured sources without an export archive.
func (s *Service) CheckArchives(ctx context.Context) (*checks.ArchiveReport, error) {
	if s.opts.Sources == nil || s.opts.ArchiveKey == nil {
		return nil, errors.New("source archives are not configured")
	}
	sources, err := s.opts.Sources()
	if err != nil {
		return nil, err
	}
	return checks.CheckArchives(ctx, s.opts.Client, s.opts.Bucket, sources, s.opts.ArchiveKey)
}

// CheckServer verifies the record database schema.
func (s *Service) CheckServer() (*checks.ServerReport, error) {
	return checks.CheckServerIntegrity(s.opts.DB, s.opts.Models...)
}

// CheckMedia returns media objects that no stored note references.
func (s *Service) CheckMedia(ctx context.Context) ([]string, error) {
	if s.opts.Notes == nil {
		return nil, errors.New("note store is not configured")
	}
	return checks.CheckOrphanMedia(ctx, s.opts.Client, s.opts.Bucket, s.opts.MediaPrefix, s.opts.Notes)
}

// FixMedia removes orphaned media and returns the removed keys.
func (s *Service) FixMedia(ctx context.Context) ([]string, error) {
	orphans, err := s.CheckMedia(ctx)
	if err != nil {
		return nil, err
	}
	if len(orphans) == 0 {
		return orphans, nil
	}
	removed, err := checks.RemoveObjects(ctx, s.opts.Client, s.opts.Bucket, s.logger, orphans)
	s.logger.Info("Removed orphaned media", zap.Int("removed", removed), zap.Int("orphans", len(orphans)))
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

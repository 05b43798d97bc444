package checks

import (
	"context"
	"fmt"

	"deck-sync/core/record"
	"deck-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ArchiveReport lists configured sources without an export archive in the bucket.
type ArchiveReport struct {
	Expected int      `json:"expected"`
	Found    int      `json:"found"`
	Missing  []string `json:"missing"`
}

// CheckArchives verifies that every source has an export archive.
// objectKey maps a source id to its archive key.
func CheckArchives(ctx context.Context, client storage.Client, bucket string, sources []record.SourceSpec, objectKey func(string) string) (*ArchiveReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ErrBucketMissing)
	}

	report := &ArchiveReport{Missing: []string{}}
	seen := make(map[string]bool, len(sources))
	for _, spec := range sources {
		if seen[spec.SourceID] {
			continue
		}
		seen[spec.SourceID] = true
		report.Expected++

		key := objectKey(spec.SourceID)
		opts := minio.ListObjectsOptions{Prefix: key, MaxKeys: 1}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			if obj.Err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", key, obj.Err)
			}
			found = obj.Key == key
			break
		}

		if found {
			report.Found++
		} else {
			report.Missing = append(report.Missing, spec.SourceID)
		}
	}

	return report, nil
}

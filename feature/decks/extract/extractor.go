package extract

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"deck-sync/core/record"
	"deck-sync/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Extractor reads export archives from object storage.
type Extractor struct {
	client  storage.Client
	bucket  string
	prefix  string
	tempDir string
	logger  *zap.Logger
}

// NewExtractor creates an extractor reading <prefix>/<source_id>.zip from bucket.
func NewExtractor(client storage.Client, bucket, prefix string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// ObjectKey returns the archive key for a source.
func (e *Extractor) ObjectKey(sourceID string) string {
	return path.Join(e.prefix, sourceID+".zip")
}

// Extract downloads and parses the export of one source.
// Download and archive failures are returned as *SourceError.
// Temporary files are always removed; a failed removal is only logged.
func (e *Extractor) Extract(ctx context.Context, spec record.SourceSpec, namespace string) ([]record.Record, error) {
	dir, err := os.MkdirTemp(e.tempDir, "export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("Failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	archive := filepath.Join(dir, "export.zip")
	if err := e.download(ctx, spec.SourceID, archive); err != nil {
		return nil, &SourceError{SourceID: spec.SourceID, Err: err}
	}

	pagesDir := filepath.Join(dir, "pages")
	if err := unzip(archive, pagesDir); err != nil {
		return nil, &SourceError{SourceID: spec.SourceID, Err: err}
	}

	files, err := listPages(pagesDir, spec.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	var records []record.Record
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := e.parseFile(file, pagesDir, namespace)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	e.logger.Info("Records extracted",
		zap.String("source_id", spec.SourceID),
		zap.String("collection", spec.TargetCollection),
		zap.Int("pages", len(files)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (e *Extractor) download(ctx context.Context, sourceID, dest string) error {
	key := e.ObjectKey(sourceID)

	obj, err := e.client.GetObject(ctx, e.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return downloadError(key, err)
	}
	defer obj.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, obj)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return downloadError(key, err)
	}
	return nil
}

func downloadError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", key, ErrArchiveNotFound)
	}
	return fmt.Errorf("failed to download %s: %w", key, err)
}

func (e *Extractor) parseFile(file, root, namespace string) ([]record.Record, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	page := Page{
		Namespace: namespace,
		Dir:       filepath.Dir(file),
		Root:      root,
	}
	page.ID = pageID(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))

	recs, err := ParseHTML(f, page, e.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(file), err)
	}
	return recs, nil
}

// pageID returns the compact id an exported file name ends with, or "".
func pageID(name string) string {
	compact := strings.ReplaceAll(name, "-", "")
	if len(compact) < 32 {
		return ""
	}
	id, err := uuid.Parse(compact[len(compact)-32:])
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

// listPages returns the html files under root in lexical order.
// Subdirectories are only entered when recursive is set.
func listPages(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".html") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

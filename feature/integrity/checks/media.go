package checks

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"deck-sync/core/storage"
	"deck-sync/feature/decks/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// NoteLister loads the stored notes of a collection.
type NoteLister interface {
	ListCollection(ctx context.Context, collection string) ([]store.Note, error)
}

// CheckOrphanMedia returns the keys of media objects no stored note references.
// Media lives under prefix/<collection>/<filename>.
func CheckOrphanMedia(ctx context.Context, client storage.Client, bucket, prefix string, notes NoteLister) ([]string, error) {
	byCollection := make(map[string][]string)
	opts := minio.ListObjectsOptions{Prefix: folderPath(prefix), Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list media: %w", obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, folderPath(prefix))
		collection, name := path.Split(rel)
		collection = strings.TrimSuffix(collection, "/")
		if collection == "" || name == "" {
			continue
		}
		byCollection[collection] = append(byCollection[collection], obj.Key)
	}

	collections := make([]string, 0, len(byCollection))
	for c := range byCollection {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	orphans := []string{}
	for _, collection := range collections {
		stored, err := notes.ListCollection(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("failed to load collection %s: %w", collection, err)
		}
		var backs strings.Builder
		for _, n := range stored {
			backs.WriteString(n.Back)
		}
		text := backs.String()

		for _, key := range byCollection[collection] {
			if !strings.Contains(text, `"`+path.Base(key)+`"`) {
				orphans = append(orphans, key)
			}
		}
	}
	return orphans, nil
}

// RemoveObjects deletes the given keys and returns how many were removed.
func RemoveObjects(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, keys []string) (int, error) {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	failed := 0
	var firstErr error
	for rErr := range client.RemoveObjects(ctx, bucket, objects, minio.RemoveObjectsOptions{}) {
		failed++
		logger.Error("Failed to remove object", zap.String("key", rErr.ObjectName), zap.Error(rErr.Err))
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to remove %s: %w", rErr.ObjectName, rErr.Err)
		}
	}
	return len(keys) - failed, firstErr
}

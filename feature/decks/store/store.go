package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"deck-sync/core/reconcile"
	"deck-sync/core/record"
	"deck-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements reconcile.Store on top of GORM and object storage.
type Store struct {
	db          *gorm.DB
	client      storage.Client
	bucket      string
	mediaPrefix string
	now         func() time.Time
	logger      *zap.Logger
}

var _ reconcile.Store = (*Store)(nil)

// New creates a store. A nil client disables media uploads.
func New(db *gorm.DB, client storage.Client, bucket, mediaPrefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:          db,
		client:      client,
		bucket:      bucket,
		mediaPrefix: strings.Trim(mediaPrefix, "/"),
		now:         time.Now,
		logger:      logger,
	}
}

// Migrate creates or updates the store tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// ExistingIDs returns the ids of every note in the collection.
func (s *Store) ExistingIDs(ctx context.Context, collection string) (reconcile.IDSet, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&Note{}).
		Where("collection = ?", collection).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ids of %s: %w", collection, err)
	}
	return reconcile.NewIDSet(ids...), nil
}

// Find returns the note matching rec: same provenance link when rec has one, otherwise same front.
func (s *Store) Find(ctx context.Context, collection string, rec record.Record) (int64, bool, error) {
	q := s.db.WithContext(ctx).Model(&Note{}).Where("collection = ?", collection)
	if rec.Source != "" {
		q = q.Where("source = ?", rec.Source)
	} else {
		q = q.Where("front = ?", rec.Front)
	}

	var ids []int64
	if err := q.Order("id").Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// Create uploads the record media and inserts a note.
func (s *Store) Create(ctx context.Context, collection string, rec record.Record) (int64, error) {
	if err := s.uploadMedia(ctx, collection, rec.Media); err != nil {
		return 0, err
	}

	note := newNote(collection, rec)
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return 0, err
	}
	return note.ID, nil
}

// Update overwrites the note when the record content differs from it.
func (s *Store) Update(ctx context.Context, collection string, id int64, rec record.Record) (bool, error) {
	var note Note
	err := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("note %d not found in %s", id, collection)
		}
		return false, err
	}

	if note.Checksum == rec.Checksum() {
		return false, nil
	}

	if err := s.uploadMedia(ctx, collection, rec.Media); err != nil {
		return false, err
	}

	next := newNote(collection, rec)
	err = s.db.WithContext(ctx).Model(&note).Updates(map[string]interface{}{
		"front":    next.Front,
		"back":     next.Back,
		"tags":     next.Tags,
		"source":   next.Source,
		"checksum": next.Checksum,
	}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the given notes from the collection.
func (s *Store) Delete(ctx context.Context, collection string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id IN ?", collection, ids).
		Delete(&Note{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// Persist records a sync mark for each collection in one transaction.
func (s *Store) Persist(ctx context.Context, collections []string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, collection := range collections {
			var count int64
			if err := tx.Model(&Note{}).Where("collection = ?", collection).Count(&count).Error; err != nil {
				return err
			}
			mark := SyncMark{Collection: collection, LastSyncedAt: now, Records: count}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "collection"}},
				DoUpdates: clause.AssignmentColumns([]string{"last_synced_at", "records"}),
			}).Create(&mark).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist sync marks: %w", err)
	}
	return nil
}

// ListCollection returns the notes of a collection ordered by id.
func (s *Store) ListCollection(ctx context.Context, collection string) ([]Note, error) {
	var notes []Note
	err := s.db.WithContext(ctx).Where("collection = ?", collection).Order("id").Find(&notes).Error
	return notes, err
}

// Marks returns every sync mark ordered by collection.
func (s *Store) Marks(ctx context.Context) ([]SyncMark, error) {
	var marks []SyncMark
	err := s.db.WithContext(ctx).Order("collection").Find(&marks).Error
	return marks, err
}

// MediaKey returns the object key of a media file.
func (s *Store) MediaKey(collection, filename string) string {
	return path.Join(s.mediaPrefix, collection, filename)
}

func (s *Store) uploadMedia(ctx context.Context, collection string, media []record.Media) error {
	if s.client == nil {
		return nil
	}
	for _, m := range media {
		if len(m.Data) == 0 {
			continue
		}
		key := s.MediaKey(collection, m.Filename)
		opts := minio.PutObjectOptions{ContentType: mime.TypeByExtension(filepath.Ext(m.Filename))}
		if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(m.Data), int64(len(m.Data)), opts); err != nil {
			return fmt.Errorf("failed to upload media %s: %w", key, err)
		}
		s.logger.Debug("Media uploaded", zap.String("key", key), zap.Int("size", len(m.Data)))
	}
	return nil
}

// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. The bucket holds two kinds of objects:
// export archives uploaded per source (exports/<source-id>.zip) and the
// media referenced by stored notes (media/<collection>/<file>). Both AWS S3
// and self-hosted MinIO are supported.
//
// The Client interface is mocked in core/storage/mocks for unit tests.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	if err := storage.CheckBucket(ctx, client, cfg.Bucket, 5*time.Second); err != nil {
//	    logger.Warn("Storage unavailable", zap.Error(err))
//	}
package storage

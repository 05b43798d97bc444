package checks

import (
	"context"
	"errors"
	"testing"

	"deck-sync/core/record"
	"deck-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func archiveKey(id string) string {
	return "exports/" + id + ".zip"
}

func TestCheckArchives(t *testing.T) {
	sources := []record.SourceSpec{
		{SourceID: "a", TargetCollection: "A"},
		{SourceID: "b", TargetCollection: "B"},
		{SourceID: "a", TargetCollection: "Other"},
	}

	t.Run("Mixed", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "decks").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "decks", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "exports/a.zip"
		})).Return(mocks.ObjectList(minio.ObjectInfo{Key: "exports/a.zip"}))
		// A longer key sharing the prefix does not count
		mockClient.On("ListObjects", mock.Anything, "decks", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "exports/b.zip"
		})).Return(mocks.ObjectList(minio.ObjectInfo{Key: "exports/b.zip.bak"}))

		report, err := CheckArchives(context.Background(), mockClient, "decks", sources, archiveKey)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Expected)
		assert.Equal(t, 1, report.Found)
		assert.Equal(t, []string{"b"}, report.Missing)
	})

	t.Run("ListError", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "decks").Return(true, nil)
		mockClient.OnList("decks", minio.ObjectInfo{Err: errors.New("timeout")})

		_, err := CheckArchives(context.Background(), mockClient, "decks", sources, archiveKey)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("BucketMissing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "decks").Return(false, nil)

		_, err := CheckArchives(context.Background(), mockClient, "decks", sources, archiveKey)
		assert.ErrorIs(t, err, ErrBucketMissing)
	})

	t.Run("NoSources", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "decks").Return(true, nil)

		report, err := CheckArchives(context.Background(), mockClient, "decks", nil, archiveKey)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Expected)
		assert.Empty(t, report.Missing)
	})
}

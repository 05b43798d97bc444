package extract

import (
	"errors"
	"fmt"
)

// ErrArchiveNotFound is returned when a source has no export archive in the bucket.
var ErrArchiveNotFound = errors.New("export archive not found")

// SourceError reports a failure attributed to one source.
type SourceError struct {
	SourceID string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("cannot export %s: %v", e.SourceID, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// FailedSource returns the id of the failing source.
func (e *SourceError) FailedSource() string {
	return e.SourceID
}

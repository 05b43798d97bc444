package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// NormalizeID converts a source id to its canonical dashed lowercase form.
// It accepts a bare 32 character hex id, a dashed uuid, or a page URL/slug whose
// last segment ends with the id (e.g. "My-Page-0123...cdef?pvs=4").
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty id")
	}

	if u, err := url.Parse(s); err == nil && u.Scheme != "" {
		s = u.Path
	} else {
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
	}

	compact := strings.ReplaceAll(path.Base(strings.TrimRight(s, "/")), "-", "")
	if len(compact) < 32 {
		return "", fmt.Errorf("invalid id %q: expected 32 hex characters", raw)
	}

	id, err := uuid.Parse(compact[len(compact)-32:])
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id.String(), nil
}

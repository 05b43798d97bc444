package record

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Media is an asset embedded in a record (e.g. an image).
type Media struct {
	// Src is the reference as it appears in the source document.
	Src string `json:"src"`
	// Filename is the name the asset is stored under.
	Filename string `json:"filename"`
	// Data holds the asset content.
	Data []byte `json:"-"`
}

// Record is a normalized entry extracted from a source.
type Record struct {
	// Front is the question side. Records with a blank front are never stored.
	Front string `json:"front"`
	// Back is the answer side. It can be empty for cloze-style records.
	Back string `json:"back,omitempty"`
	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`
	// Source is a link back to the block the record was extracted from.
	Source string `json:"source,omitempty"`
	// Media lists embedded assets.
	Media []Media `json:"media,omitempty"`
}

// Processable reports whether the record has front content.
func (r Record) Processable() bool {
	return strings.TrimSpace(r.Front) != ""
}

// Checksum returns a stable digest of the record content.
// Tag order and media order do not affect the result.
func (r Record) Checksum() string {
	tags := append([]string(nil), r.Tags...)
	sort.Strings(tags)

	files := make([]string, 0, len(r.Media))
	for _, m := range r.Media {
		files = append(files, m.Filename)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, part := range []string{r.Front, r.Back, strings.Join(tags, " "), r.Source, strings.Join(files, " ")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Preview returns a shortened front for log and error messages.
func (r Record) Preview() string {
	s := strings.Join(strings.Fields(r.Front), " ")
	if s == "" {
		s = strings.Join(strings.Fields(r.Back), " ")
	}
	if runes := []rune(s); len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return s
}

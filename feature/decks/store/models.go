package store

import (
	"strings"
	"time"

	"deck-sync/core/record"
)

// Note is one stored record.
type Note struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Collection string    `gorm:"column:collection;size:255;not null;index:idx_notes_collection" json:"collection"`
	Front      string    `gorm:"column:front;type:text;not null" json:"front"`
	Back       string    `gorm:"column:back;type:text" json:"back"`
	Tags       string    `gorm:"column:tags;size:1024" json:"tags"` // space separated
	Source     string    `gorm:"column:source;size:512;index:idx_notes_source" json:"source,omitempty"`
	Checksum   string    `gorm:"column:checksum;size:64" json:"-"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for notes.
func (Note) TableName() string {
	return "notes"
}

// TagList returns the tags as a slice.
func (n Note) TagList() []string {
	return strings.Fields(n.Tags)
}

// SyncMark records the last successful round of a collection.
type SyncMark struct {
	Collection   string    `gorm:"column:collection;primaryKey;size:255" json:"collection"`
	LastSyncedAt time.Time `gorm:"column:last_synced_at" json:"last_synced_at"`
	Records      int64     `gorm:"column:records" json:"records"`
}

// TableName overrides the table name for sync marks.
func (SyncMark) TableName() string {
	return "sync_marks"
}

// Models lists every model owned by the store, in migration order.
func Models() []interface{} {
	return []interface{}{&Note{}, &SyncMark{}}
}

func newNote(collection string, rec record.Record) Note {
	return Note{
		Collection: collection,
		Front:      rec.Front,
		Back:       rec.Back,
		Tags:       joinTags(rec.Tags),
		Source:     rec.Source,
		Checksum:   rec.Checksum(),
	}
}

// joinTags joins tags with spaces. Whitespace inside a tag becomes an underscore.
func joinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.Join(strings.Fields(tag), "_")
		if tag != "" {
			out = append(out, tag)
		}
	}
	return strings.Join(out, " ")
}

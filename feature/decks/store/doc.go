// Package store persists synced records with GORM and keeps their media in
// object storage.
//
// Records live in the notes table, one row per record, scoped by collection.
// A record is identified by its provenance link when it has one, otherwise by
// its front text. Each successful round upserts a sync_marks row per collection.
package store

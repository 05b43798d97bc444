// Package extract turns exported source archives into records.
//
// An export is a zip archive of HTML pages stored in the bucket under
// <export_prefix>/<source_id>.zip. Every toggle block (<details>) of a page
// becomes one record: the summary is the front, the rest of the toggle is the
// back. Images inside a toggle are read into the record as media.
package extract

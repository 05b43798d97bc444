// Package record holds the data model shared by the extractor, the reconciler and the
// collection store.
//
// # Records
//
// A Record is one normalized flash-card-like entry produced by the extractor: front and
// back text, tags, a provenance link back to the page it came from, and any embedded
// media. Records are produced fresh for every sync round and are never mutated; they are
// only compared against stored entries and used to create or update them.
//
// # Sources
//
// A SourceSpec maps one remote source id onto one local collection. Source ids are
// normalized to the canonical dashed form before use, and the target collection falls
// back to the id exactly as configured when no collection is given.
package record

// Package integrity provides health checks for the storage and database deck-sync relies on.
//
// # Checks Provided
//
//   - Structure: the bucket exists and holds the export and media folders.
//   - Archives: every configured source has an export archive.
//   - Media: media objects that no stored note references.
//   - Server: the record database schema matches the store models (columns, types).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks without fixing anything.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/archives : Runs archive check.
//   - GET /integrity/media : Runs media check (supports ?fix=true to remove orphans).
//   - GET /integrity/server : Runs server schema check.
package integrity

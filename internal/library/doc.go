// Package library persists game records in SQLite and exposes the duplicate
// matcher that keeps the collection free of accidental re-adds.
//
// The Store manages database connections, schema initialization, record CRUD,
// and play-time tracking. Records carry title, developer, storefront source,
// catalog ID, executable location, tags, and screenshots; timestamps are
// stored as RFC3339 text. Read-modify-write sequences such as the duplicate
// check before a commit run inside a single transaction via WithTx so
// concurrent add attempts cannot interleave.
//
// Unlike a cache, the database is the long-term home of the collection.
// Schema changes bump the version in schema.go and must ship with migration
// guidance.
//
// Treat this package as the single source of truth for record semantics; when
// you add new fields, update schema.sql, bump schemaVersion, and extend the
// scan helpers together.
package library

// Package core provides the business logic for dataset ingestion.
//
// This package contains all domain logic independent of the transport and the
// storage engine. Web handlers and tests drive it through [Service]; storage is
// reached only through the [Store] interface, implemented by the database
// package for PostgreSQL and SQLite.
//
// # Lifecycle
//
// A dataset is registered with [Service.CreateDataset] and starts in
// [StatusPending]. [Service.UploadFile] moves it through the ingestion
// pipeline:
//
//  1. The dataset is claimed with a pending to processing transition
//  2. The file is decoded by [ParseTable] according to the declared file type
//  3. [InferSchema] derives per-column statistics
//  4. Rows are written in batches of the configured size, one transaction each
//  5. The dataset ends in [StatusReady], or [StatusError] with the failure text
//
// Batches committed before a failure are kept. Status never moves back to
// pending, so a dataset can be ingested at most once.
//
// # Error Handling
//
// Operations return wrapped sentinel errors ([ErrNotFound], [ErrValidation],
// [ErrConflict], [ErrParse], [ErrUnsupportedFileType]) for callers to classify
// with errors.Is. [MapError] turns any error into a user-facing message with a
// support code:
//
//   - DS001-DS002: Dataset lookup and state errors
//   - FILE001-FILE006: File size, content and type errors
//   - VAL001-VAL006: Request validation errors
//   - DB001-DB008: Database errors
//   - REQ001-REQ002: Cancelled or timed out requests
package core

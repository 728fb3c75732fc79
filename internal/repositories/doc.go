// Package repositories implements SQLite persistence for download history.
//
// Key Implementations:
//   - [DownloadRepository] : CRUD over the downloads table with soft deletes and newest-first listing
//   - [DownloadRecorder] : adapts [DownloadRepository] to the downloader's run recorder hook
//
// Sequence numbers provide stable, human-readable ordering (e.g., download #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

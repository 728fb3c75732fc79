package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotweb/internal/downloader"
	"github.com/desertthunder/spotweb/internal/models"
	"github.com/desertthunder/spotweb/internal/shared"
)

const downloadColumns = `
	id, sequence, url, mode, status, found, downloaded, errors, exit_code,
	playlist_path, error_message, started_at, completed_at, created_at,
	updated_at, deleted_at
`

// DownloadRepository implements [models.Repository] for [models.Download] history.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new download with a fresh sequence. An ID is generated unless one is already set.
func (r *DownloadRepository) Create(download *models.Download) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	download.SetSequence(sequence)

	if download.ID() == "" {
		download.SetID(shared.GenerateID())
	}

	query := `INSERT INTO downloads (` + downloadColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		download.ID(),
		sequence,
		download.URL(),
		download.Mode(),
		download.Status(),
		download.Found(),
		download.Downloaded(),
		download.Errors(),
		nullableInt(download.ExitCode()),
		nullableString(download.PlaylistPath()),
		nullableString(download.ErrorMessage()),
		download.StartedAt(),
		download.CompletedAt(),
		download.CreatedAt(),
		download.UpdatedAt(),
		download.DeletedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	return nil
}

// Get retrieves a download by ID, excluding soft-deleted downloads
func (r *DownloadRepository) Get(id string) (*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE id = ? AND deleted_at IS NULL`

	download, err := scanDownload(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrDownloadNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}
	return download, nil
}

// Update writes the mutable state of a download.
func (r *DownloadRepository) Update(download *models.Download) error {
	if err := download.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	download.SetUpdatedAt(now)

	query := `
		UPDATE downloads
		SET status = ?, found = ?, downloaded = ?, errors = ?, exit_code = ?,
			playlist_path = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		download.Status(),
		download.Found(),
		download.Downloaded(),
		download.Errors(),
		nullableInt(download.ExitCode()),
		nullableString(download.PlaylistPath()),
		nullableString(download.ErrorMessage()),
		download.CompletedAt(),
		now,
		download.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	return expectAffected(result, download.ID())
}

// Delete soft-deletes a download by ID
func (r *DownloadRepository) Delete(id string) error {
	query := `UPDATE downloads SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}

	return expectAffected(result, id)
}

// List retrieves downloads newest first.
//
// Criteria: "status" (string) filters by status, "limit" (int) caps the result count when positive.
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.Download, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		download, err := scanDownload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download: %w", err)
		}
		downloads = append(downloads, download)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return downloads, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanDownload scans a [sql.Row] or [sql.Rows] into a [models.Download]
func scanDownload(s scanner) (*models.Download, error) {
	var (
		id           string
		sequence     int
		url          string
		mode         string
		status       string
		found        int
		downloaded   int
		errCount     int
		exitCode     sql.NullInt64
		playlistPath sql.NullString
		errorMessage sql.NullString
		startedAt    time.Time
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := s.Scan(
		&id, &sequence, &url, &mode, &status, &found, &downloaded, &errCount, &exitCode,
		&playlistPath, &errorMessage, &startedAt, &completedAt, &createdAt,
		&updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	download := models.NewDownload(sequence, url, mode)
	download.SetID(id)
	download.SetStatus(status)
	download.SetCounts(found, downloaded, errCount)
	download.SetStartedAt(startedAt)
	download.SetCreatedAt(createdAt)
	download.SetUpdatedAt(updatedAt)

	if exitCode.Valid {
		code := int(exitCode.Int64)
		download.SetExitCode(&code)
	}
	if playlistPath.Valid {
		download.SetPlaylistPath(playlistPath.String)
	}
	if errorMessage.Valid {
		download.SetErrorMessage(errorMessage.String)
	}
	if completedAt.Valid {
		download.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		download.SetDeletedAt(&deletedAt.Time)
	}

	return download, nil
}

// DownloadRecorder adapts a [DownloadRepository] to [downloader.Recorder].
type DownloadRecorder struct {
	repo *DownloadRepository
}

// NewDownloadRecorder creates a recorder writing to repo.
func NewDownloadRecorder(repo *DownloadRepository) *DownloadRecorder {
	return &DownloadRecorder{repo: repo}
}

// RecordStart inserts a running download keyed by the run ID.
func (rec *DownloadRecorder) RecordStart(ctx context.Context, run downloader.Run) error {
	download := models.NewDownload(0, run.Request.URL, string(run.Request.Mode))
	download.SetID(run.ID)
	download.SetStartedAt(run.StartedAt)
	return rec.repo.Create(download)
}

// RecordFinish stores the final counters, exit code, listing and error of a run.
func (rec *DownloadRecorder) RecordFinish(ctx context.Context, run downloader.Run) error {
	download, err := rec.repo.Get(run.ID)
	if err != nil {
		return err
	}

	download.SetStatus(run.Status())
	download.SetCounts(run.Stats.Found, run.Stats.Downloaded, run.Stats.Errors)
	if run.ExitCode >= 0 {
		code := run.ExitCode
		download.SetExitCode(&code)
	}
	download.SetPlaylistPath(run.ListingPath)
	if run.Err != nil {
		download.SetErrorMessage(run.Err.Message())
	}
	completed := run.CompletedAt
	download.SetCompletedAt(&completed)

	return rec.repo.Update(download)
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w or already deleted: %s", shared.ErrDownloadNotFound, id)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

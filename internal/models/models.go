// package models defines the persisted data model for the download front end
package models

import (
	"errors"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Download statuses.
const (
	DownloadRunning   = "running"
	DownloadCompleted = "completed"
	DownloadFailed    = "failed"
)

// Download is one recorded run of the downloader.
type Download struct {
	id           string
	sequence     int
	url          string
	mode         string
	status       string
	found        int
	downloaded   int
	errors       int
	exitCode     *int
	playlistPath string
	errorMessage string
	startedAt    time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewDownload creates a running Download for url started now.
func NewDownload(sequence int, url, mode string) *Download {
	now := time.Now()
	return &Download{
		sequence:  sequence,
		url:       url,
		mode:      mode,
		status:    DownloadRunning,
		startedAt: now,
		createdAt: now,
		updatedAt: now,
	}
}

func (d *Download) ID() string               { return d.id }
func (d *Download) Sequence() int            { return d.sequence }
func (d *Download) URL() string              { return d.url }
func (d *Download) Mode() string             { return d.mode }
func (d *Download) Status() string           { return d.status }
func (d *Download) Found() int               { return d.found }
func (d *Download) Downloaded() int          { return d.downloaded }
func (d *Download) Errors() int              { return d.errors }
func (d *Download) ExitCode() *int           { return d.exitCode }
func (d *Download) PlaylistPath() string     { return d.playlistPath }
func (d *Download) ErrorMessage() string     { return d.errorMessage }
func (d *Download) StartedAt() time.Time     { return d.startedAt }
func (d *Download) CompletedAt() *time.Time  { return d.completedAt }
func (d *Download) CreatedAt() time.Time     { return d.createdAt }
func (d *Download) UpdatedAt() time.Time     { return d.updatedAt }
func (d *Download) DeletedAt() *time.Time    { return d.deletedAt }
func (d *Download) SetID(id string)          { d.id = id }
func (d *Download) SetSequence(seq int)      { d.sequence = seq }
func (d *Download) SetStatus(s string)       { d.status = s }
func (d *Download) SetExitCode(code *int)    { d.exitCode = code }
func (d *Download) SetPlaylistPath(p string) { d.playlistPath = p }
func (d *Download) SetErrorMessage(m string) { d.errorMessage = m }
func (d *Download) SetStartedAt(t time.Time) { d.startedAt = t }
func (d *Download) SetUpdatedAt(t time.Time) { d.updatedAt = t }
func (d *Download) SetCreatedAt(t time.Time) { d.createdAt = t }
func (d *Download) SetDeletedAt(t *time.Time) { d.deletedAt = t }

// SetCounts replaces the output counters.
func (d *Download) SetCounts(found, downloaded, errors int) {
	d.found, d.downloaded, d.errors = found, downloaded, errors
}

// SetCompletedAt marks the download finished at t.
func (d *Download) SetCompletedAt(t *time.Time) { d.completedAt = t }

// Duration is how long the download ran, or has been running.
func (d *Download) Duration() time.Duration {
	if d.completedAt == nil {
		return time.Since(d.startedAt)
	}
	return d.completedAt.Sub(d.startedAt)
}

// Validate checks required fields and the status value.
func (d *Download) Validate() error {
	if d.url == "" {
		return errors.New("url is required")
	}
	if d.mode == "" {
		return errors.New("mode is required")
	}
	switch d.status {
	case DownloadRunning, DownloadCompleted, DownloadFailed:
	default:
		return errors.New("invalid status: " + d.status)
	}
	if d.found < 0 || d.downloaded < 0 || d.errors < 0 {
		return errors.New("counters must not be negative")
	}
	return nil
}

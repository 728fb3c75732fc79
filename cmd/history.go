package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotweb/internal/models"
	"github.com/desertthunder/spotweb/internal/repositories"
	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/desertthunder/spotweb/internal/ui"
	"github.com/urfave/cli/v3"
)

// historyRecord is the JSON shape of one recorded download.
type historyRecord struct {
	ID           string     `json:"id"`
	Sequence     int        `json:"sequence"`
	URL          string     `json:"url"`
	Mode         string     `json:"mode"`
	Status       string     `json:"status"`
	Found        int        `json:"found"`
	Downloaded   int        `json:"downloaded"`
	Errors       int        `json:"errors"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	PlaylistPath string     `json:"playlist_path,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func newHistoryRecord(d *models.Download) historyRecord {
	return historyRecord{
		ID:           d.ID(),
		Sequence:     d.Sequence(),
		URL:          d.URL(),
		Mode:         d.Mode(),
		Status:       d.Status(),
		Found:        d.Found(),
		Downloaded:   d.Downloaded(),
		Errors:       d.Errors(),
		ExitCode:     d.ExitCode(),
		PlaylistPath: d.PlaylistPath(),
		ErrorMessage: d.ErrorMessage(),
		StartedAt:    d.StartedAt(),
		CompletedAt:  d.CompletedAt(),
	}
}

// History prints recorded downloads as a table or JSON.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.OpenHistoryDatabase(config.Database)
	if errors.Is(err, shared.ErrHistoryDisabled) {
		return fmt.Errorf("%w: set database.path in the config", err)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	status := cmd.String("status")
	switch status {
	case "", models.DownloadRunning, models.DownloadCompleted, models.DownloadFailed:
	default:
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	downloads, err := repositories.NewDownloadRepository(db).List(map[string]any{
		"status": status,
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		records := make([]historyRecord, 0, len(downloads))
		for _, d := range downloads {
			records = append(records, newHistoryRecord(d))
		}
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	return r.writePlain("%s\n", ui.HistoryTable(downloads))
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spotweb/internal/downloader"
	"github.com/desertthunder/spotweb/internal/models"
	"github.com/desertthunder/spotweb/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// each pooled connection would otherwise get its own empty database
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "downloads")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestDownloadRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload(0, "https://open.spotify.com/track/1", "track")

		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		if download.ID() == "" {
			t.Error("download ID should be set after creation")
		}
		if download.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", download.Sequence())
		}
	})

	t.Run("Create keeps preset ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload(0, "spotify:album:1", "albums")
		download.SetID("run-1")

		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		if _, err := repo.Get("run-1"); err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		if err := repo.Create(models.NewDownload(0, "", "track")); err == nil {
			t.Fatal("expected validation error for empty URL")
		}
	})

	t.Run("Get And Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload(0, "spotify:playlist:1", "playlist")
		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}

		code := 0
		completed := time.Now()
		download.SetStatus(models.DownloadCompleted)
		download.SetCounts(10, 9, 1)
		download.SetExitCode(&code)
		download.SetPlaylistPath("/music/playlists/Mix/Mix.m3u")
		download.SetCompletedAt(&completed)

		if err := repo.Update(download); err != nil {
			t.Fatalf("failed to update download: %v", err)
		}

		got, err := repo.Get(download.ID())
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if got.Status() != models.DownloadCompleted {
			t.Errorf("expected status completed, got %s", got.Status())
		}
		if got.Found() != 10 || got.Downloaded() != 9 || got.Errors() != 1 {
			t.Errorf("unexpected counters %d/%d/%d", got.Found(), got.Downloaded(), got.Errors())
		}
		if got.ExitCode() == nil || *got.ExitCode() != 0 {
			t.Errorf("expected exit code 0, got %v", got.ExitCode())
		}
		if got.PlaylistPath() != "/music/playlists/Mix/Mix.m3u" {
			t.Errorf("unexpected playlist path %q", got.PlaylistPath())
		}
		if got.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewDownloadRepository(db).Get("nonexistent-id")
		if !errors.Is(err, shared.ErrDownloadNotFound) {
			t.Fatalf("expected ErrDownloadNotFound, got %v", err)
		}
	})

	t.Run("Update NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		download := models.NewDownload(1, "spotify:track:1", "track")
		download.SetID("ghost")
		if err := NewDownloadRepository(db).Update(download); !errors.Is(err, shared.ErrDownloadNotFound) {
			t.Fatalf("expected ErrDownloadNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		download := models.NewDownload(0, "spotify:track:1", "track")
		if err := repo.Create(download); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}

		if err := repo.Delete(download.ID()); err != nil {
			t.Fatalf("failed to delete download: %v", err)
		}
		if _, err := repo.Get(download.ID()); err == nil {
			t.Error("expected deleted download to be hidden")
		}
		if err := repo.Delete(download.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		urls := []string{"spotify:track:1", "spotify:track:2", "spotify:track:3"}
		for i, url := range urls {
			download := models.NewDownload(0, url, "track")
			if i == 1 {
				download.SetStatus(models.DownloadFailed)
			}
			if err := repo.Create(download); err != nil {
				t.Fatalf("failed to create download: %v", err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     []string
		}{
			{"all newest first", map[string]any{}, []string{"spotify:track:3", "spotify:track:2", "spotify:track:1"}},
			{"limit", map[string]any{"limit": 2}, []string{"spotify:track:3", "spotify:track:2"}},
			{"status", map[string]any{"status": models.DownloadFailed}, []string{"spotify:track:2"}},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				got, err := repo.List(c.criteria)
				if err != nil {
					t.Fatalf("failed to list downloads: %v", err)
				}
				if len(got) != len(c.want) {
					t.Fatalf("expected %d downloads, got %d", len(c.want), len(got))
				}
				for i, d := range got {
					if d.URL() != c.want[i] {
						t.Errorf("position %d: expected %s, got %s", i, c.want[i], d.URL())
					}
				}
			})
		}
	})
}

func TestDownloadRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("records a completed run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		rec := NewDownloadRecorder(repo)

		run := downloader.Run{
			ID:        "run-ok",
			Request:   downloader.Request{URL: "spotify:playlist:1", Mode: downloader.ModePlaylist},
			ExitCode:  -1,
			StartedAt: time.Now(),
		}
		if err := rec.RecordStart(ctx, run); err != nil {
			t.Fatalf("RecordStart failed: %v", err)
		}

		started, err := repo.Get("run-ok")
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if started.Status() != models.DownloadRunning || started.Mode() != "playlist" {
			t.Errorf("unexpected started record %s/%s", started.Status(), started.Mode())
		}

		run.Stats = downloader.Stats{Found: 2, Downloaded: 2}
		run.ExitCode = 0
		run.ListingPath = "/music/playlists/Mix/Mix.m3u"
		run.CompletedAt = time.Now()
		if err := rec.RecordFinish(ctx, run); err != nil {
			t.Fatalf("RecordFinish failed: %v", err)
		}

		done, err := repo.Get("run-ok")
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if done.Status() != models.DownloadCompleted || done.Downloaded() != 2 {
			t.Errorf("unexpected finished record %s downloaded=%d", done.Status(), done.Downloaded())
		}
		if done.PlaylistPath() != run.ListingPath {
			t.Errorf("expected listing %s, got %s", run.ListingPath, done.PlaylistPath())
		}
	})

	t.Run("records a failed run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewDownloadRepository(db)
		rec := NewDownloadRecorder(repo)

		run := downloader.Run{
			ID:        "run-fail",
			Request:   downloader.Request{URL: "spotify:track:1", Mode: downloader.ModeTrack},
			ExitCode:  -1,
			StartedAt: time.Now(),
		}
		if err := rec.RecordStart(ctx, run); err != nil {
			t.Fatalf("RecordStart failed: %v", err)
		}

		run.Err = &downloader.Error{Kind: downloader.KindNotFound, Detail: "/opt/spotdl"}
		run.CompletedAt = time.Now()
		if err := rec.RecordFinish(ctx, run); err != nil {
			t.Fatalf("RecordFinish failed: %v", err)
		}

		got, err := repo.Get("run-fail")
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if got.Status() != models.DownloadFailed {
			t.Errorf("expected failed status, got %s", got.Status())
		}
		if got.ExitCode() != nil {
			t.Errorf("expected no exit code, got %d", *got.ExitCode())
		}
		if got.ErrorMessage() != run.Err.Message() {
			t.Errorf("unexpected error message %q", got.ErrorMessage())
		}
	})

	t.Run("finish without start fails", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		rec := NewDownloadRecorder(NewDownloadRepository(db))
		err := rec.RecordFinish(ctx, downloader.Run{ID: "missing", CompletedAt: time.Now()})
		if !errors.Is(err, shared.ErrDownloadNotFound) {
			t.Fatalf("expected ErrDownloadNotFound, got %v", err)
		}
	})
}

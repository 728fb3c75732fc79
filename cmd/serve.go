package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/downloader"
	"github.com/desertthunder/spotweb/internal/repositories"
	"github.com/desertthunder/spotweb/internal/server"
	"github.com/desertthunder/spotweb/internal/session"
	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/desertthunder/spotweb/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web front end until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder downloader.Recorder
	db, err := shared.OpenHistoryDatabase(config.Database)
	switch {
	case errors.Is(err, shared.ErrHistoryDisabled):
		r.logger.Info("download history disabled")
	case err != nil:
		return fmt.Errorf("failed to open history database: %w", err)
	default:
		defer db.Close()
		recorder = repositories.NewDownloadRecorder(repositories.NewDownloadRepository(db))
		r.logger.Info("recording download history", "path", config.Database.Path)
	}

	signer, err := session.NewSigner(config.Auth.SessionSecret)
	if err != nil {
		return err
	}
	if config.Auth.SessionSecret == "" {
		r.logger.Warn("no session secret configured, sessions will not survive a restart")
	}

	store := session.NewStore(ctx, config.Session, r.logger)
	sessions := session.NewManager(store, signer, config.Session.SessionTTL(), r.logger)
	defer sessions.Close()

	templates, err := server.NewTemplateManager()
	if err != nil {
		return err
	}

	app := web.NewApp(web.AppOpts{
		Gate:      web.NewGate(config.Auth.Token),
		Sessions:  sessions,
		Runner:    downloader.NewRunnerFromConfig(config.Downloader, r.logger, recorder),
		Templates: templates,
		Logger:    r.logger,
	})

	r.logger.Info("starting spotweb",
		"addr", config.Server.Addr(), "spotdl", config.Downloader.Path, "music_dir", config.Downloader.MusicDir)

	return server.New(config.Server.Addr(), app.Routes(), r.logger).Run(ctx)
}

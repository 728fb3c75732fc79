package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/spotweb/internal/downloader"
	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/desertthunder/spotweb/internal/ui"
	"github.com/urfave/cli/v3"
)

// WriteM3U regenerates the listing file of an existing playlist directory.
func (r *Runner) WriteM3U(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: playlist directory", shared.ErrMissingArgument)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, dir)
	}

	ext := cmd.String("ext")
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	path, err := downloader.WriteListing(dir, ext)
	if err != nil {
		return err
	}

	r.logger.Debug("wrote listing", "path", path, "ext", ext)
	return r.writePlain("%s %s\n", ui.OK("✓"), path)
}

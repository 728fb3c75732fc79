package downloader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Snapshot maps playlist directory paths to their modification times.
type Snapshot map[string]time.Time

// TakeSnapshot creates root if needed and records the mtime of each immediate subdirectory.
func TakeSnapshot(root string) (Snapshot, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create playlists directory: %w", err)
	}

	dirs, err := listDirs(root)
	if err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(dirs))
	for _, d := range dirs {
		snap[d.path] = d.modTime
	}
	return snap, nil
}

type dirInfo struct {
	path    string
	modTime time.Time
}

// listDirs returns the immediate subdirectories of root ordered by name.
func listDirs(root string) ([]dirInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var dirs []dirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		dirs = append(dirs, dirInfo{path: filepath.Join(root, entry.Name()), modTime: info.ModTime()})
	}
	return dirs, nil
}

// changedDirs returns the entries of current that are new or whose mtime differs from before.
func changedDirs(before Snapshot, current []dirInfo) []dirInfo {
	var changed []dirInfo
	for _, d := range current {
		if prev, ok := before[d.path]; !ok || !prev.Equal(d.modTime) {
			changed = append(changed, d)
		}
	}
	return changed
}

// latest returns the most recently modified directory; ties go to the first by name.
func latest(dirs []dirInfo) dirInfo {
	best := dirs[0]
	for _, d := range dirs[1:] {
		if d.modTime.After(best.modTime) {
			best = d
		}
	}
	return best
}

// SelectPlaylistDir picks the playlist directory a finished run wrote to.
//
// The most recently modified changed directory wins. When nothing changed the most recently modified directory
// overall is used. Concurrent playlist runs can confuse this heuristic.
func SelectPlaylistDir(root string, before Snapshot) (string, error) {
	current, err := listDirs(root)
	if err != nil {
		return "", err
	}
	if len(current) == 0 {
		return "", fmt.Errorf("no playlist directories in %s", root)
	}

	candidates := changedDirs(before, current)
	if len(candidates) == 0 {
		candidates = current
	}
	return latest(candidates).path, nil
}

// Finalize selects the playlist directory for a finished run and writes its listing.
// Returns the listing file path.
func Finalize(root string, before Snapshot, ext string) (string, error) {
	dir, err := SelectPlaylistDir(root, before)
	if err != nil {
		return "", err
	}
	return WriteListing(dir, ext)
}

// ListingPath returns the listing file path for a playlist directory.
func ListingPath(dir string) string {
	return filepath.Join(dir, filepath.Base(dir)+".m3u")
}

// WriteListing writes <dir>/<dirname>.m3u with one file name per line for every regular file in dir whose extension
// matches ext (case-insensitive), sorted case-insensitively. Any existing listing is replaced.
func WriteListing(dir, ext string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create playlist directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var tracks []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			tracks = append(tracks, entry.Name())
		}
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		return strings.ToLower(tracks[i]) < strings.ToLower(tracks[j])
	})

	path := ListingPath(dir)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create listing: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, name := range tracks {
		if _, err := w.WriteString(name + "\n"); err != nil {
			return "", fmt.Errorf("failed to write listing: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write listing: %w", err)
	}

	return path, f.Close()
}

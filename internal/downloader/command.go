package downloader

import (
	"strings"
)

// Output templates understood by spotdl.
const (
	TemplateByArtistAlbum = "{artist}/{album}/{artist} - {title}.{output-ext}"
	TemplatePlaylistFlat  = "playlists/{list-name}/{artist} - {title}.{output-ext}"
)

// PlaylistsDir is the directory under the music root that holds playlist downloads.
const PlaylistsDir = "playlists"

// Mode selects how downloaded files are laid out.
type Mode string

const (
	ModeTrack    Mode = "track"
	ModeAlbums   Mode = "albums"
	ModePlaylist Mode = "playlist"
)

// ParseMode normalizes s; anything other than "albums" or "playlist" is [ModeTrack].
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAlbums:
		return ModeAlbums
	case ModePlaylist:
		return ModePlaylist
	default:
		return ModeTrack
	}
}

// Request is a single download submitted from the browser.
type Request struct {
	URL  string
	Mode Mode
}

// NewRequest trims the raw query values and normalizes the mode.
func NewRequest(rawURL, rawMode string) Request {
	return Request{URL: strings.TrimSpace(rawURL), Mode: ParseMode(rawMode)}
}

var spotifyHosts = []string{"open.spotify.com/", "spotify.link/", "spotify.com/"}

// LooksLikeSpotify reports whether url is plausibly a Spotify link or URI.
//
// This is a substring heuristic, not a URL parser.
func LooksLikeSpotify(url string) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	if strings.HasPrefix(u, "spotify:") {
		return true
	}
	for _, host := range spotifyHosts {
		if strings.Contains(u, host) {
			return true
		}
	}
	return false
}

// Validate checks the request URL before any process is started.
func (r Request) Validate() error {
	if r.URL == "" {
		return validationError("Invalid URL (empty).")
	}
	if !LooksLikeSpotify(r.URL) {
		return validationError("Invalid URL. Expected a Spotify link/URI.")
	}
	return nil
}

// Builder assembles spotdl invocations.
type Builder struct {
	ToolPath string
	Format   string
	Bitrate  string
	Lyrics   string
}

// NewBuilder returns a Builder for toolPath with the default audio options.
func NewBuilder(toolPath string) Builder {
	return Builder{ToolPath: toolPath, Format: "flac", Bitrate: "320k", Lyrics: "genius"}
}

// Build returns the full argument vector, tool path first.
func (b Builder) Build(req Request) []string {
	args := []string{
		b.ToolPath,
		"download",
		req.URL,
		"--format", b.Format,
		"--bitrate", b.Bitrate,
		"--lyrics", b.Lyrics,
		"--only-verified-results",
	}

	switch req.Mode {
	case ModeAlbums:
		args = append(args, "--fetch-albums", "--output", TemplateByArtistAlbum)
	case ModePlaylist:
		args = append(args, "--output", TemplatePlaylistFlat)
	default:
		args = append(args, "--output", TemplateByArtistAlbum)
	}

	return args
}

// ListingExt is the extension of files included in playlist listings.
func (b Builder) ListingExt() string {
	return "." + strings.ToLower(b.Format)
}

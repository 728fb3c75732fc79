package downloader

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

var foundPattern = regexp.MustCompile(`Found (\d+) songs? in`)

var failureMarkers = []string{"LookupError", "AudioProviderError", "Error:", "Failed"}

// rateLimitMarker appears in spotdl's recoverable throttling messages.
const rateLimitMarker = "rate/request limit"

// Counter accumulates [Stats] from tool output lines.
type Counter struct {
	stats Stats
}

// Observe updates the counters from one line and returns the new snapshot.
//
// Found is overwritten by the latest match; Downloaded and Errors only grow.
func (c *Counter) Observe(line string) Stats {
	if m := foundPattern.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.stats.Found = n
		}
	}

	if strings.Contains(line, `Downloaded "`) || strings.HasPrefix(line, "Downloaded ") {
		c.stats.Downloaded++
	}

	if isFailureLine(line) {
		c.stats.Errors++
	}

	return c.stats
}

// Stats returns the current snapshot.
func (c *Counter) Stats() Stats {
	return c.stats
}

func isFailureLine(line string) bool {
	if strings.Contains(line, rateLimitMarker) {
		return false
	}
	for _, marker := range failureMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// maxLineBytes caps a single line of tool output.
const maxLineBytes = 1 << 20

// scanLines is a [bufio.SplitFunc] that ends lines at "\n", "\r\n" or a bare "\r",
// returning each line with a single "\n" terminator. A final unterminated line is
// returned as is.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		line := append(data[:i:i], '\n')
		if data[i] == '\n' {
			return i + 1, line, nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, line, nil
			}
			return i + 1, line, nil
		}
		if atEOF {
			return i + 1, line, nil
		}
		// "\r" at the end of the buffer may be the first half of "\r\n".
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

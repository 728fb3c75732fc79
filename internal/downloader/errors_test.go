package downloader

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	tc := []struct {
		name string
		err  *Error
		want string
	}{
		{"validation", validationError("Invalid URL (empty)."), "Invalid URL (empty)."},
		{"not found", notFoundError("/opt/spotdl", exec.ErrNotFound), "SpotDL not found. Make sure it is installed. Path: /opt/spotdl"},
		{"exit", exitError(2, cause), "SpotDL exited with errors. Check output above."},
		{"finalizer", finalizerError(cause), "Generation failed: boom"},
		{"internal", internalError(cause), "Unexpected error: boom"},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			if got := c.err.Message(); got != c.want {
				t.Errorf("Message() = %q, want %q", got, c.want)
			}
			if c.err.Error() == "" {
				t.Error("Error() should not be empty")
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Run("wrapped error keeps kind", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", exitError(1, errors.New("exit status 1")))
		if KindOf(err) != KindExit {
			t.Errorf("KindOf() = %v, want exit", KindOf(err))
		}
	})

	t.Run("plain error is internal", func(t *testing.T) {
		err := errors.New("plain")
		if KindOf(err) != KindInternal {
			t.Errorf("KindOf() = %v, want internal", KindOf(err))
		}
		if de := AsError(err); de.Kind != KindInternal || !errors.Is(de, err) {
			t.Errorf("AsError() = %+v", de)
		}
	})

	t.Run("unwrap reaches cause", func(t *testing.T) {
		err := notFoundError("spotdl", exec.ErrNotFound)
		if !errors.Is(err, exec.ErrNotFound) {
			t.Error("expected errors.Is to find exec.ErrNotFound")
		}
		if !strings.Contains(err.Error(), "not_found") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

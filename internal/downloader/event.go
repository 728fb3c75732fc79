package downloader

import (
	"fmt"
	"strings"
)

// EventType tags a stream [Event].
type EventType string

const (
	EventStatus   EventType = "status"
	EventOutput   EventType = "output"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Stats are the running counters extracted from tool output.
type Stats struct {
	Found      int `json:"found"`
	Downloaded int `json:"downloaded"`
	Errors     int `json:"errors"`
}

// Event is one message of the download stream, serialized as JSON on the wire.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Data    string    `json:"data,omitempty"`
	Stats   *Stats    `json:"stats,omitempty"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

func startingEvent() Event {
	return Event{Type: EventStatus, Message: "Starting SpotDL..."}
}

func commandEvent(args []string) Event {
	return Event{Type: EventOutput, Data: fmt.Sprintf("Command: %s\n\n", strings.Join(args, " "))}
}

func lineEvent(line string, stats Stats) Event {
	return Event{Type: EventOutput, Data: line, Stats: &stats}
}

func listingEvent(path string) Event {
	return Event{Type: EventOutput, Data: fmt.Sprintf("\n[M3U] Generated: %s\n", path)}
}

func listingFailedEvent(err *Error) Event {
	return Event{Type: EventOutput, Data: fmt.Sprintf("\n[M3U] %s\n", err.Message())}
}

func completeEvent() Event {
	return Event{Type: EventComplete, Message: "All downloads completed successfully."}
}

func errorEvent(err *Error) Event {
	return Event{Type: EventError, Message: err.Message()}
}

package kube

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"iter"
	"log/slog"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// EventType discriminates watch events.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventModified EventType = "MODIFIED"
	EventDeleted  EventType = "DELETED"
	EventBookmark EventType = "BOOKMARK"
	EventError    EventType = "ERROR"
)

// WatchEvent is one lifecycle event from a watch stream. Object is set
// for ADDED, MODIFIED, DELETED, and BOOKMARK events (a bookmark object
// carries only a resourceVersion); Status is set for ERROR events.
type WatchEvent[K any] struct {
	Type   EventType
	Object *K
	Status *metav1.Status
}

// watchFrame is the wire envelope of one newline-delimited frame.
type watchFrame struct {
	Type   EventType       `json:"type"`
	Object json.RawMessage `json:"object"`
}

// maxFrameSize bounds a single watch frame. Matches maxBodySize since
// a frame embeds at most one object.
const maxFrameSize = maxBodySize

// watchEvents turns the streamed response body into a lazy, pull-driven
// sequence of typed events. Frames are decoded strictly in arrival
// order, at most one ahead of consumption. A frame that fails to decode
// is dropped from the sequence and logged at debug level; this lossy
// filter is a deliberate contract, so protocol noise never terminates a
// consumer. The sequence ends when the stream does, and breaking out of
// the range closes the stream, releasing the connection.
func watchEvents[K any](rc io.ReadCloser, log *slog.Logger) iter.Seq[WatchEvent[K]] {
	return func(yield func(WatchEvent[K]) bool) {
		defer rc.Close()

		scanner := bufio.NewScanner(rc)
		scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			ev, ok := decodeEvent[K](line)
			if !ok {
				log.Debug("dropping malformed watch frame", "frame", truncate(line, 256))
				continue
			}

			if !yield(ev) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			log.Debug("watch stream ended", "error", err)
		}
	}
}

// decodeEvent decodes one frame. ok is false for frames with invalid
// JSON, an unknown discriminator, or a payload that does not match the
// discriminator's expected shape.
func decodeEvent[K any](frame []byte) (WatchEvent[K], bool) {
	var envelope watchFrame
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return WatchEvent[K]{}, false
	}

	switch envelope.Type {
	case EventAdded, EventModified, EventDeleted, EventBookmark:
		var obj K
		if err := json.Unmarshal(envelope.Object, &obj); err != nil {
			return WatchEvent[K]{}, false
		}
		return WatchEvent[K]{Type: envelope.Type, Object: &obj}, true

	case EventError:
		var status metav1.Status
		if err := json.Unmarshal(envelope.Object, &status); err != nil {
			return WatchEvent[K]{}, false
		}
		return WatchEvent[K]{Type: EventError, Status: &status}, true

	default:
		return WatchEvent[K]{}, false
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

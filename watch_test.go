package kube

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// watchHandler streams the given frames as one newline-delimited
// response, then ends the stream.
func watchHandler(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "application/json")
		for _, frame := range frames {
			_, _ = fmt.Fprintln(w, frame)
			flusher.Flush()
		}
	}
}

func collect[K any](t *testing.T, api API[K], opts metav1.ListOptions, version string) []WatchEvent[K] {
	t.Helper()

	events, err := api.Watch(context.Background(), opts, version)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	var got []WatchEvent[K]
	for ev := range events {
		got = append(got, ev)
	}
	return got
}

func TestWatchYieldsEventsInArrivalOrder(t *testing.T) {
	c := newTestClient(t, watchHandler(
		`{"type":"ADDED","object":{"metadata":{"name":"w1","resourceVersion":"1"}}}`,
		`{"type":"MODIFIED","object":{"metadata":{"name":"w1","resourceVersion":"2"}}}`,
		`{"type":"DELETED","object":{"metadata":{"name":"w1","resourceVersion":"3"}}}`,
	))

	got := collect(t, widgets(c), metav1.ListOptions{}, "0")

	want := []EventType{EventAdded, EventModified, EventDeleted}
	if len(got) != len(want) {
		t.Fatalf("events = %d, want %d", len(got), len(want))
	}
	for i, ev := range got {
		if ev.Type != want[i] {
			t.Errorf("event %d type = %s, want %s", i, ev.Type, want[i])
		}
		if ev.Object == nil || ev.Object.Metadata.Name != "w1" {
			t.Errorf("event %d object = %+v", i, ev.Object)
		}
	}
}

func TestWatchDropsMalformedFrames(t *testing.T) {
	c := newTestClient(t, watchHandler(
		`{"type":"ADDED","object":{"metadata":{"name":"w1"}}}`,
		`{"type":"MODIFIED","object":`,
		`{"type":"MODIFIED","object":{"metadata":{"name":"w1"}}}`,
	))

	got := collect(t, widgets(c), metav1.ListOptions{}, "0")

	if len(got) != 2 {
		t.Fatalf("events = %d, want 2 (malformed frame must be dropped silently)", len(got))
	}
	if got[0].Type != EventAdded || got[1].Type != EventModified {
		t.Errorf("event order disturbed: %v, %v", got[0].Type, got[1].Type)
	}
}

func TestWatchDropsUnknownEventType(t *testing.T) {
	c := newTestClient(t, watchHandler(
		`{"type":"EXPLODED","object":{"metadata":{"name":"w1"}}}`,
		`{"type":"ADDED","object":{"metadata":{"name":"w1"}}}`,
	))

	got := collect(t, widgets(c), metav1.ListOptions{}, "0")

	if len(got) != 1 || got[0].Type != EventAdded {
		t.Fatalf("events = %+v, want single ADDED", got)
	}
}

func TestWatchErrorFrameCarriesStatus(t *testing.T) {
	c := newTestClient(t, watchHandler(
		`{"type":"ERROR","object":{"kind":"Status","apiVersion":"v1","status":"Failure","reason":"Expired","message":"too old resource version","code":410}}`,
	))

	got := collect(t, widgets(c), metav1.ListOptions{}, "1")

	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	ev := got[0]
	if ev.Type != EventError || ev.Status == nil {
		t.Fatalf("event = %+v, want ERROR with status", ev)
	}
	if ev.Status.Code != 410 || ev.Status.Reason != metav1.StatusReasonExpired {
		t.Errorf("status = %+v", ev.Status)
	}
	if ev.Object != nil {
		t.Error("object variant set on ERROR event")
	}
}

func TestWatchBookmarkEvent(t *testing.T) {
	c := newTestClient(t, watchHandler(
		`{"type":"BOOKMARK","object":{"metadata":{"resourceVersion":"100"}}}`,
	))

	got := collect(t, widgets(c), metav1.ListOptions{AllowWatchBookmarks: true}, "0")

	if len(got) != 1 || got[0].Type != EventBookmark {
		t.Fatalf("events = %+v, want single BOOKMARK", got)
	}
	if got[0].Object.Metadata.ResourceVersion != "100" {
		t.Errorf("bookmark version = %q, want 100", got[0].Object.Metadata.ResourceVersion)
	}
}

func TestWatchStartsFromListVersion(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("watch") == "true" {
			gotQuery = r.URL.Query()
			// Nothing has changed since the snapshot: the server
			// sends no initial replay.
			return
		}
		writeJSON(t, w, http.StatusOK, `{"metadata":{"resourceVersion":"42"},"items":[{"metadata":{"name":"w1"}}]}`)
	}))

	api := widgets(c)
	ctx := context.Background()

	list, err := api.List(ctx, metav1.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	got := collect(t, api, metav1.ListOptions{}, list.ResourceVersion())

	if len(got) != 0 {
		t.Errorf("watch from list snapshot replayed %d events, want 0", len(got))
	}
	if v := gotQuery["resourceVersion"]; len(v) != 1 || v[0] != "42" {
		t.Errorf("resourceVersion query = %v, want [42]", v)
	}
}

func TestWatchAbandonmentReleasesConnection(t *testing.T) {
	released := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprintln(w, `{"type":"ADDED","object":{"metadata":{"name":"w1"}}}`)
		flusher.Flush()

		// Hold the stream open until the client hangs up.
		<-r.Context().Done()
		close(released)
	}))

	events, err := widgets(c).Watch(context.Background(), metav1.ListOptions{}, "0")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	for range events {
		break // stop pulling after the first event
	}

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("abandoning the sequence did not release the connection")
	}
}

func TestWatchContextCancellationEndsSequence(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprintln(w, `{"type":"ADDED","object":{"metadata":{"name":"w1"}}}`)
		flusher.Flush()
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := widgets(c).Watch(ctx, metav1.ListOptions{}, "0")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	var got []WatchEvent[widget]
	for ev := range events {
		got = append(got, ev)
		cancel()
	}

	if len(got) != 1 {
		t.Errorf("events = %d, want 1 before cancellation ended the stream", len(got))
	}
}

// Package testutil holds shared test helpers for the HTTP client
// boundaries.
package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"
)

// CassettePath returns the on-disk path of a named cassette, without
// the extension the recorder appends.
func CassettePath(name string) string {
	return filepath.Join("testdata", "fixtures", name)
}

// HasCassette reports whether a recorded cassette exists for name.
func HasCassette(name string) bool {
	_, err := os.Stat(CassettePath(name) + ".yaml")
	return err == nil
}

// RecordMode reports whether the suite runs with live recording on.
func RecordMode() bool {
	return os.Getenv("VCR_MODE") == "record"
}

// NewVCRRecorder creates a record/replay recorder for the named
// cassette. Replaying is the default; set VCR_MODE=record to capture
// fresh interactions against live endpoints.
func NewVCRRecorder(t *testing.T, name string) (*recorder.Recorder, func()) {
	t.Helper()

	mode := recorder.ModeReplaying
	if os.Getenv("VCR_MODE") == "record" {
		mode = recorder.ModeRecording
	}

	r, err := recorder.NewAsMode(CassettePath(name), mode, nil)
	if err != nil {
		t.Fatalf("failed to create VCR recorder: %v", err)
	}

	// Match on method and URL only; request bodies carry secrets that
	// should not have to byte-match the recording.
	r.SetMatcher(func(req *http.Request, i cassette.Request) bool {
		return req.Method == i.Method && req.URL.String() == i.URL
	})

	cleanup := func() {
		if err := r.Stop(); err != nil {
			t.Errorf("failed to stop VCR recorder: %v", err)
		}
	}

	return r, cleanup
}

// VCRHTTPClient returns an HTTP client whose transport replays (or
// records) through the recorder.
func VCRHTTPClient(r *recorder.Recorder) *http.Client {
	return &http.Client{Transport: r}
}

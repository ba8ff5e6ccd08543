package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInitText(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "text"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("info"); err != nil {
		t.Fatal(err)
	}

	Get().Info(context.Background(), "test message", String("k", "v"))

	out := buf.String()
	if !strings.Contains(out, "msg=\"test message\"") || !strings.Contains(out, "k=v") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "json"); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("debug"); err != nil {
		t.Fatal(err)
	}

	Named("resolver").Debug(context.Background(), "lookup", Int("n", 3), Bool("builtin", true), Error(errors.New("boom")))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	delete(got, "time")

	want := map[string]any{
		"level":   "DEBUG",
		"msg":     "lookup",
		"logger":  "resolver",
		"n":       float64(3),
		"builtin": true,
		"error":   "boom",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("log entry mismatch (-want +got):\n%s", diff)
	}
}

func TestInitUnknownFormat(t *testing.T) {
	if err := Init(&bytes.Buffer{}, "xml"); err == nil {
		t.Errorf("Init() with unknown format should fail")
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "text"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = SetLevelString("info") })

	for _, level := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) error = %v", level, err)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Errorf("SetLevelString(verbose) should fail")
	}

	if err := SetLevelString("error"); err != nil {
		t.Fatal(err)
	}
	Get().Warn(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Errorf("warning logged at error level: %s", buf.String())
	}
}

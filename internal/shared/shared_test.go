package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalJSON(t *testing.T) {
	tc := []struct {
		name   string
		value  any
		pretty bool
		want   string
	}{
		{
			name:  "compact",
			value: map[string]string{"name": "Liked Songs"},
			want:  `{"name":"Liked Songs"}`,
		},
		{
			name:   "pretty",
			value:  map[string]int{"total": 2},
			pretty: true,
			want:   "{\n  \"total\": 2\n}",
		},
		{
			name:  "does not escape html",
			value: map[string]string{"name": "Rock & Roll <3"},
			want:  `{"name":"Rock & Roll <3"}`,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalJSON(tt.value, tt.pretty)
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %q, want %q", string(got), tt.want)
			}
		})
	}

	t.Run("unsupported value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestJoinArtists(t *testing.T) {
	if got := JoinArtists([]string{"Daft Punk", "Pharrell Williams"}); got != "Daft Punk, Pharrell Williams" {
		t.Errorf("JoinArtists() = %q", got)
	}
	if got := JoinArtists(nil); got != "" {
		t.Errorf("JoinArtists(nil) = %q, want empty", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info("listener ready", "addr", "127.0.0.1:43019")

	if !strings.Contains(buf.String(), "listener ready") {
		t.Errorf("expected log output to contain message, got %q", buf.String())
	}

	child := WithLogger(logger, "component", "auth")
	child.Info("hello")
	if !strings.Contains(buf.String(), "component=auth") {
		t.Errorf("expected child logger fields, got %q", buf.String())
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "browse.log")

	logger, closer, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	logger.Info("opened snapshot", "id", "3f1c")
	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "opened snapshot") || !strings.Contains(string(data), "id=3f1c") {
		t.Errorf("unexpected log contents %q", string(data))
	}

	t.Run("unwritable path", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if _, _, err := NewFileLogger(filepath.Join(file, "browse.log")); err == nil {
			t.Error("expected error for a log path below a regular file")
		}
	})
}

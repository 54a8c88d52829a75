package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotify-backup/internal/auth"
	"github.com/desertthunder/spotify-backup/internal/services"
	"github.com/desertthunder/spotify-backup/internal/shared"
	tu "github.com/desertthunder/spotify-backup/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			status := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				Status:     status,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.status != status {
				t.Error("expected status to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.status != os.Stderr {
				t.Error("expected status to default to os.Stderr")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil config falls back to defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.cfg() == nil {
				t.Error("expected default config")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"auth", "export", "history", "setup"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		prefix string
	}{
		{
			name:   "authorization",
			err:    &auth.AuthorizationError{Reason: "access_denied"},
			prefix: "authorization failed: access_denied",
		},
		{
			name:   "fetch",
			err:    fmt.Errorf("liked tracks: %w", &services.FetchError{URL: "http://x/me/tracks", Attempts: 3, Err: errors.New("boom")}),
			prefix: "data fetch failed: liked tracks:",
		},
		{
			name:   "bind",
			err:    fmt.Errorf("%w: address in use", shared.ErrListenerBind),
			prefix: "callback listener could not bind: address in use",
		},
		{
			name:   "other",
			err:    errors.New("disk full"),
			prefix: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diagnose(tt.err); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("diagnose() = %q, want prefix %q", got, tt.prefix)
			}
		})
	}

	t.Run("fail exit codes", func(t *testing.T) {
		status := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Status: status})

		if code := runner.fail(context.Canceled); code != 130 {
			t.Errorf("expected 130 for cancellation, got %d", code)
		}
		if code := runner.fail(&auth.AuthorizationError{Reason: "access_denied"}); code != 1 {
			t.Errorf("expected 1, got %d", code)
		}
		if !strings.Contains(status.String(), "authorization failed: access_denied") {
			t.Errorf("expected diagnostic, got %q", status.String())
		}
	})
}

// fakeAPI serves a small library: two liked tracks, one liked album and two playlists, the second of which fails.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	track := func(uri, name string) map[string]any {
		return map[string]any{"track": map[string]any{
			"uri":     uri,
			"name":    name,
			"artists": []any{map[string]any{"name": "Band"}},
			"album":   map[string]any{"name": "Record", "release_date": "2010"},
		}}
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var body any
		switch r.URL.Path {
		case "/v1/me/tracks":
			body = map[string]any{"items": []any{track("spotify:track:1", "One"), track("spotify:track:2", "Two")}, "next": nil}
		case "/v1/me/albums":
			body = map[string]any{"items": []any{map[string]any{
				"added_at": "2024-01-01T00:00:00Z",
				"album":    map[string]any{"uri": "spotify:album:1", "name": "Record", "release_date": "2010"},
			}}, "next": nil}
		case "/v1/me/playlists":
			body = map[string]any{"items": []any{
				map[string]any{"id": "a", "name": "Morning"},
				map[string]any{"id": "b", "name": "Broken"},
			}, "next": nil}
		case "/v1/playlists/a/tracks":
			body = map[string]any{"items": []any{track("spotify:track:3", "Three")}, "next": nil}
		case "/v1/playlists/b/tracks":
			w.WriteHeader(http.StatusInternalServerError)
			return
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRunner(t *testing.T, apiURL string) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Spotify.APIURL = apiURL
	config.API.MaxTries = 1
	config.API.RetryDelay = 0
	config.Database.Path = filepath.Join(t.TempDir(), "test.db")

	output := &bytes.Buffer{}
	status := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:      config,
		Output:      output,
		Status:      status,
		Logger:      shared.NewLogger(&bytes.Buffer{}),
		OpenBrowser: func(string) error { return errors.New("no browser in tests") },
	})
	return runner, output, status
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"spotify-backup"}, args...))
}

func TestExportCommand(t *testing.T) {
	api := fakeAPI(t)

	t.Run("exports with token and saves snapshot", func(t *testing.T) {
		runner, output, status := testRunner(t, api.URL+"/v1")
		path := filepath.Join(t.TempDir(), "backup.json")

		if err := run(t, runner, "export", "--token", "T1", "--quiet", "--save", "-o", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		var bundle struct {
			Playlists []struct {
				Name   string           `json:"name"`
				Tracks []map[string]any `json:"tracks"`
			} `json:"playlists"`
			Albums []map[string]any `json:"albums"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &bundle); err != nil {
			t.Fatalf("invalid export: %v", err)
		}

		if len(bundle.Playlists) != 3 {
			t.Fatalf("expected 3 playlists, got %d", len(bundle.Playlists))
		}
		if bundle.Playlists[0].Name != "Liked Songs" || len(bundle.Playlists[0].Tracks) != 2 {
			t.Errorf("unexpected liked playlist: %+v", bundle.Playlists[0])
		}
		if bundle.Playlists[2].Name != "Broken" || len(bundle.Playlists[2].Tracks) != 0 {
			t.Errorf("expected degraded playlist to be empty: %+v", bundle.Playlists[2])
		}
		if len(bundle.Albums) != 1 {
			t.Errorf("expected 1 album, got %d", len(bundle.Albums))
		}

		diag := status.String()
		if !strings.Contains(diag, "playlist degraded") || !strings.Contains(diag, "Broken") {
			t.Errorf("expected degraded warning, got %q", diag)
		}
		if !strings.Contains(diag, "Snapshot saved") {
			t.Errorf("expected snapshot message, got %q", diag)
		}

		output.Reset()
		if err := run(t, runner, "history", "list", "--json"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}

		var summaries []snapshotSummary
		if err := json.Unmarshal(output.Bytes(), &summaries); err != nil {
			t.Fatalf("invalid history JSON %q: %v", output.String(), err)
		}
		if len(summaries) != 1 || summaries[0].Playlists != 3 || summaries[0].Degraded != 1 {
			t.Fatalf("unexpected summaries: %+v", summaries)
		}

		output.Reset()
		if err := run(t, runner, "history", "show", "--format", "txt", summaries[0].ID); err != nil {
			t.Fatalf("history show failed: %v", err)
		}
		if !strings.HasPrefix(output.String(), "Liked Songs\r\nOne\tBand\tRecord\tspotify:track:1\t2010\r\n") {
			t.Errorf("unexpected text export: %q", output.String())
		}

		if err := run(t, runner, "history", "delete", summaries[0].ID); err != nil {
			t.Fatalf("history delete failed: %v", err)
		}
		if err := run(t, runner, "history", "show", summaries[0].ID); !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("liked only as csv", func(t *testing.T) {
		runner, _, _ := testRunner(t, api.URL+"/v1")
		path := filepath.Join(t.TempDir(), "liked.csv")

		if err := run(t, runner, "export", "--token", "T1", "-q", "--dump", "liked", "--format", "csv", "-o", path); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		base := strings.TrimSuffix(path, ".csv")
		tracks := tu.MustReadFile(t, base+"_tracks.csv")
		if strings.Contains(tracks, "Morning") {
			t.Errorf("playlists should not be fetched: %s", tracks)
		}
		tu.AssertFileExists(t, base+"_albums.csv")
	})

	t.Run("invalid dump", func(t *testing.T) {
		runner, _, _ := testRunner(t, api.URL+"/v1")

		err := run(t, runner, "export", "--token", "T1", "--dump", "podcasts", "-o", filepath.Join(t.TempDir(), "x.json"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		runner, _, _ := testRunner(t, api.URL+"/v1")

		err := run(t, runner, "export", "--token", "T1", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("rejected token is a fetch failure", func(t *testing.T) {
		runner, _, _ := testRunner(t, api.URL+"/v1")
		path := filepath.Join(t.TempDir(), "backup.json")

		err := run(t, runner, "export", "--token", "WRONG", "-q", "-o", path)
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("nothing should be written after a fatal fetch failure")
		}
	})
}

func TestHistoryCommand(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		runner, output, _ := testRunner(t, "http://unused")

		if err := run(t, runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No snapshots stored") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("browse requires id", func(t *testing.T) {
		runner, _, _ := testRunner(t, "http://unused")

		if err := run(t, runner, "history", "browse"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("browse unknown snapshot", func(t *testing.T) {
		runner, _, _ := testRunner(t, "http://unused")
		logFile := filepath.Join(t.TempDir(), "browse.log")

		err := run(t, runner, "history", "browse", "--log-file", logFile, "missing")
		if !errors.Is(err, shared.ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
		if _, statErr := os.Stat(logFile); !os.IsNotExist(statErr) {
			t.Error("log file should not be created before the snapshot loads")
		}
	})

	t.Run("show requires id", func(t *testing.T) {
		runner, _, _ := testRunner(t, "http://unused")

		if err := run(t, runner, "history", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		runner, output, _ := testRunner(t, "http://unused")
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := run(t, runner, "--config", path, "setup", "config"); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "http://127.0.0.1:43019/redirect") {
			t.Errorf("expected redirect URI hint, got %q", output.String())
		}

		if err := run(t, runner, "--config", path, "setup", "config"); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("config reports write failure", func(t *testing.T) {
		runner, _, _ := testRunner(t, "http://unused")
		runner.output = &tu.FWriter{}
		path := filepath.Join(t.TempDir(), "config.toml")

		err := run(t, runner, "--config", path, "setup", "config")
		if err == nil || !strings.Contains(err.Error(), "failed to write output") {
			t.Errorf("expected write error, got %v", err)
		}
	})

	t.Run("database", func(t *testing.T) {
		runner, _, _ := testRunner(t, "http://unused")

		if err := run(t, runner, "setup", "database"); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, runner.cfg().Database.Path)
	})

	t.Run("Before loads config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		content := fmt.Sprintf("[export]\nworkers = 4\n\n[database]\npath = %q\n", filepath.Join(dir, "from-file.db"))
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})
		if err := run(t, runner, "--config", path, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "from-file.db"))

		if runner.cfg().Export.Workers != 4 {
			t.Errorf("expected workers from file, got %d", runner.cfg().Export.Workers)
		}
		if runner.cfg().Spotify.ClientID == "" {
			t.Error("expected defaults to fill missing keys")
		}
	})
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/propgraph/pkg/computer/programs"
)

// runLogged executes the root command and returns what was logged.
func runLogged(t *testing.T, level log.Level, args ...string) string {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, level).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return logs.String()
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("loaded", "vertices", 6)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line should start with a HH:MM:SS.ms timestamp: %q", line)
	}
	if !strings.Contains(line, "vertices=6") {
		t.Errorf("key/value pairs missing: %q", line)
	}
}

func TestStatsLogsLoadTime(t *testing.T) {
	path := writeClassic(t)
	logs := runLogged(t, log.InfoLevel, "stats", path)
	if !regexp.MustCompile(`Loaded 6 vertices \(\d[\d.]*m?s\)`).MatchString(logs) {
		t.Errorf("stats should log the load time, got:\n%s", logs)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.start = p.start.Add(-1500 * time.Millisecond)
	p.done("Computed pageRank")
	if !regexp.MustCompile(`Computed pageRank \(1\.5\d*s\)`).MatchString(buf.String()) {
		t.Errorf("done() = %q", buf.String())
	}
}

func TestComputeLogLevels(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeClassic(t)

	tests := []struct {
		name    string
		level   log.Level
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "info",
			level:   log.InfoLevel,
			args:    []string{"compute", programs.NameDegree, path, "--no-cache"},
			want:    []string{"vertex program started", "vertex program finished"},
			notWant: []string{"superstep="},
		},
		{
			name:  "debug",
			level: log.DebugLevel,
			args:  []string{"compute", programs.NameDegree, path, "--no-cache"},
			want:  []string{"vertex program started", "superstep=1", "vertex program finished"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := runLogged(t, tt.level, tt.args...)
			for _, s := range tt.want {
				if !strings.Contains(logs, s) {
					t.Errorf("logs should contain %q:\n%s", s, logs)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(logs, s) {
					t.Errorf("logs should not contain %q:\n%s", s, logs)
				}
			}
		})
	}
}

func TestComputeLogsCacheHit(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeClassic(t)

	first := runLogged(t, log.InfoLevel, "compute", programs.NameDegree, path)
	if strings.Contains(first, "using cached result") {
		t.Errorf("first run should compute:\n%s", first)
	}
	second := runLogged(t, log.InfoLevel, "compute", programs.NameDegree, path)
	if !strings.Contains(second, "using cached result") || strings.Contains(second, "vertex program started") {
		t.Errorf("second run should be served from the cache:\n%s", second)
	}
}

func TestConfigDebugLog(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "propgraph.toml")
	if err := os.WriteFile(cfg, []byte("[compute]\nworkers = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := writeClassic(t)

	if logs := runLogged(t, log.DebugLevel, "--config", cfg, "stats", path); !strings.Contains(logs, "loaded config") {
		t.Errorf("debug logs should mention the config file:\n%s", logs)
	}
	if logs := runLogged(t, log.InfoLevel, "--config", cfg, "stats", path); strings.Contains(logs, "loaded config") {
		t.Errorf("config message is debug only:\n%s", logs)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield the default logger")
	}
	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
			root.SetArgs([]string{"completion", shell})
			root.SetOut(&out)
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s script should mention %s", shell, appName)
			}
		})
	}
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"completion", "tcsh"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("unknown shell should fail")
	}
}

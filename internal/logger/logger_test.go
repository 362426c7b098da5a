package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConsoleOutput(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		bar     bool
		logFn   func(l *Logger)
		want    string
	}{
		{"info", false, false, func(l *Logger) { l.Info("found %d videos", 3) }, "found 3 videos\n"},
		{"warn", false, false, func(l *Logger) { l.Warn("skipped %s", "abc") }, "[WARN] skipped abc\n"},
		{"debug hidden", false, false, func(l *Logger) { l.Debug("detail") }, ""},
		{"debug verbose", true, false, func(l *Logger) { l.Debug("detail") }, "[DEBUG] detail\n"},
		{"quiet under bar", false, true, func(l *Logger) { l.Info("hidden") }, ""},
		{"verbose beats bar", true, true, func(l *Logger) { l.Info("shown") }, "shown\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := New(tt.verbose)
			l.SetOutput(&out, &errOut)
			l.SetProgressBar(tt.bar)

			tt.logFn(l)

			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestErrorGoesToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(false)
	l.SetOutput(&out, &errOut)

	l.Error("boom: %v", "disk full")

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty", out.String())
	}
	if errOut.String() != "[ERROR] boom: disk full\n" {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestFileLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	var out, errOut bytes.Buffer
	l := New(false)
	l.SetOutput(&out, &errOut)
	l.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	if err := l.SetFileLog(path); err != nil {
		t.Fatalf("SetFileLog() error: %v", err)
	}
	l.Info("hello")
	l.Debug("quiet %d", 1)
	l.Error("bad")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"2024-05-06 07:08:09 [INFO] hello",
		"2024-05-06 07:08:09 [DEBUG] quiet 1",
		"2024-05-06 07:08:09 [ERROR] bad",
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(got) != len(want) {
		t.Fatalf("log lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	if err := l.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

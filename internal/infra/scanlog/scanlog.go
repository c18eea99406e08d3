// Package scanlog is the append-only textual activity journal:
// one event per line, `[ISO-timestamp] <message>`.
package scanlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileName = "scan.log"

type Logger struct {
	mu   sync.Mutex
	path string
}

// New ensures dir exists and returns a journal writing to
// dir/scan.log.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}
	return &Logger{path: filepath.Join(dir, fileName)}, nil
}

// Append writes one line. Callers treat failures as best-effort; this
// method just reports them.
func (l *Logger) Append(message string) error {
	line := fmt.Sprintf("[%s] %s\n",
		time.Now().UTC().Format(time.RFC3339),
		sanitize(message),
	)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line)
	return err
}

// sanitize keeps the journal one-event-per-line even when a client
// puts newlines in a subject id.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

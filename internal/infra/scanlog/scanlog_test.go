package scanlog_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realscan/realscan/internal/infra/scanlog"
)

var lineRE = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z\] .+$`)

func TestAppend_LineFormat(t *testing.T) {
	dir := t.TempDir()
	l, err := scanlog.New(dir)
	require.NoError(t, err)

	require.NoError(t, l.Append("Scan started for subject ID: M001"))
	require.NoError(t, l.Append("Scan completed for subject ID: M001"))

	data, err := os.ReadFile(filepath.Join(dir, "scan.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Regexp(t, lineRE, line)
	}
	assert.Contains(t, lines[0], "Scan started")
	assert.Contains(t, lines[1], "Scan completed")
}

func TestAppend_SanitizesNewlines(t *testing.T) {
	dir := t.TempDir()
	l, err := scanlog.New(dir)
	require.NoError(t, err)

	require.NoError(t, l.Append("evil\nsubject\r\nid"))

	data, err := os.ReadFile(filepath.Join(dir, "scan.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 1, "one event stays one line")
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	_, err := scanlog.New(dir)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

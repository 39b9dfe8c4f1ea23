package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/scaffold/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewStaging(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	fm := NewFileManager(out, false)

	staging, err := fm.NewStaging()
	require.NoError(t, err)
	assert.DirExists(t, staging)
	assert.Equal(t, out, filepath.Dir(staging))
	assert.True(t, strings.HasPrefix(filepath.Base(staging), StagingPrefix))

	fm.Discard(staging)
	assert.NoDirExists(t, staging)
}

func TestCommit_Rename(t *testing.T) {
	out := t.TempDir()
	fm := NewFileManager(out, false)

	staging, err := fm.NewStaging()
	require.NoError(t, err)
	writeFile(t, filepath.Join(staging, "demo", "README.md"), "hello")

	dest, err := fm.Commit(filepath.Join(staging, "demo"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "demo"), dest)
	assert.Equal(t, "hello", readFile(t, filepath.Join(dest, "README.md")))
}

func TestCommit_ExistsWithoutOverwrite(t *testing.T) {
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "demo", "keep.txt"), "mine")
	fm := NewFileManager(out, false)

	staging, err := fm.NewStaging()
	require.NoError(t, err)
	writeFile(t, filepath.Join(staging, "demo", "keep.txt"), "theirs")

	_, err = fm.Commit(filepath.Join(staging, "demo"))
	require.Error(t, err)
	assert.Equal(t, errors.EOutputExists, errors.GetCode(err))
	assert.Equal(t, "mine", readFile(t, filepath.Join(out, "demo", "keep.txt")))
}

func TestCommit_OverwriteMerges(t *testing.T) {
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "demo", "keep.txt"), "mine")
	writeFile(t, filepath.Join(out, "demo", "README.md"), "old")
	fm := NewFileManager(out, true)

	staging, err := fm.NewStaging()
	require.NoError(t, err)
	writeFile(t, filepath.Join(staging, "demo", "README.md"), "new")
	writeFile(t, filepath.Join(staging, "demo", "src", "pkg", "__init__.py"), "")

	dest, err := fm.Commit(filepath.Join(staging, "demo"))
	require.NoError(t, err)
	assert.Equal(t, "new", readFile(t, filepath.Join(dest, "README.md")))
	assert.Equal(t, "mine", readFile(t, filepath.Join(dest, "keep.txt")))
	assert.FileExists(t, filepath.Join(dest, "src", "pkg", "__init__.py"))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "replay.json")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o600))
	assert.Equal(t, "two", readFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteSummaryLog(t *testing.T) {
	out := t.TempDir()
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	summary := BatchSummary{
		Template:   "python",
		Sheet:      "projects.csv",
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Millisecond),
		Total:      2,
		Successful: 1,
		Failed:     1,
		Generated:  []GeneratedInfo{{Row: 2, ProjectDir: "out/alpha", Files: 12}},
		Failures:   []FailureInfo{{Row: 3, ErrorCode: "E_INVALID_MODULE_NAME", Error: "bad name"}},
	}

	path, err := WriteSummaryLog(summary, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "scaffold-batch-20260301_093000.yaml"), path)

	var decoded BatchSummary
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, path)), &decoded))
	assert.Equal(t, "1.5s", decoded.Duration)
	assert.Equal(t, 2, decoded.Total)
	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, 3, decoded.Failures[0].Row)
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "settings.json"), "{}")
	writeFile(t, filepath.Join(src, "commands", "review.md"), "review")
	dst := filepath.Join(t.TempDir(), ".claude")

	require.NoError(t, CopyTree(src, dst))
	assert.Equal(t, "{}", readFile(t, filepath.Join(dst, "settings.json")))
	assert.Equal(t, "review", readFile(t, filepath.Join(dst, "commands", "review.md")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "media2text/internal/app/errors"
	"media2text/internal/app/model"
)

func touch(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644))
}

func names(infos []model.FileInfo) []string {
	return lo.Map(infos, func(f model.FileInfo, _ int) string { return f.Name })
}

func TestListCandidates(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.mp4", 10)
	touch(t, dir, "a.mp3", 20)
	touch(t, dir, ".DS_Store", 1)
	touch(t, dir, "C.wav", 5)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := ListCandidates(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"C.wav", "a.mp3", "b.mp4"}, names(got))
	assert.Equal(t, int64(20), got[1].Size)
	assert.Equal(t, filepath.Join(dir, "a.mp3"), got[1].FullPath)
}

func TestListCandidates_MissingDir(t *testing.T) {
	_, err := ListCandidates(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "one.txt", 1)
	touch(t, dir, "two.TXT", 1)
	touch(t, dir, "three.md", 1)

	got, err := ListByExtension(dir, "txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"one.txt", "two.TXT"}, names(got))
}

func TestReadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  hello world \n\n"), 0o644))
	text, err := ReadTextFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

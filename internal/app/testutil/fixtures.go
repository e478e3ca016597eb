package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"media2text/internal/app/model"
)

// WriteFile creates dir/name filled with size bytes and returns its path.
func WriteFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o644))
	return path
}

// FakeMediaConverter copies the input to the workspace instead of running
// ffmpeg.
type FakeMediaConverter struct {
	MediaType   model.MediaType
	Seconds     float64
	ExtractErr  error
	DurationErr error

	mu        sync.Mutex
	Extracted []string
}

func NewFakeMediaConverter() *FakeMediaConverter {
	return &FakeMediaConverter{MediaType: model.MediaTypeAudio, Seconds: 60}
}

func (f *FakeMediaConverter) ExtractAudio(ctx context.Context, inputPath, outputDir string) (string, error) {
	if f.ExtractErr != nil {
		return "", f.ExtractErr
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(outputDir, stem(inputPath)+"_16khz.wav")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.Extracted = append(f.Extracted, filepath.Base(inputPath))
	f.mu.Unlock()
	return out, nil
}

func (f *FakeMediaConverter) DetectMediaType(ctx context.Context, inputPath string) (model.MediaType, error) {
	return f.MediaType, nil
}

func (f *FakeMediaConverter) Duration(ctx context.Context, inputPath string) (float64, error) {
	return f.Seconds, f.DurationErr
}

// FakeSplitter writes one segment per entry of Sizes, named
// <stem>_000.wav, <stem>_001.wav and so on.
type FakeSplitter struct {
	Sizes []int
	Err   error
}

func (f *FakeSplitter) Split(ctx context.Context, inputPath, outputDir string, budgetBytes int64) ([]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(f.Sizes))
	for i, size := range f.Sizes {
		path := filepath.Join(outputDir, fmt.Sprintf("%s_%03d.wav", stem(inputPath), i))
		if err := os.WriteFile(path, bytes.Repeat([]byte{0}, size), 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package audio

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media2text/internal/app/errors"
)

// Splitter cuts a normalized audio file into size-bounded segments.
type Splitter interface {
	Split(ctx context.Context, inputPath, outputDir string, budgetBytes int64) ([]string, error)
}

// Segmenter splits audio with the ffmpeg segment muxer.
type Segmenter struct {
	tools
}

func NewSegmenter(opts ...Option) *Segmenter {
	return &Segmenter{tools: newTools(opts)}
}

// Split writes <stem>_000.wav, <stem>_001.wav, ... into outputDir and returns
// their paths in chronological order. Segments left by an earlier run for the
// same stem are removed first.
func (s *Segmenter) Split(ctx context.Context, inputPath, outputDir string, budgetBytes int64) ([]string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("audio file", inputPath)
		}
		return nil, errors.Wrapf(err, "stat %s", inputPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create segment directory %s", outputDir)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	stale, err := listSegments(outputDir, stem)
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "remove stale segment %s", path)
		}
	}

	seconds := SegmentDuration(budgetBytes, NormalizedByteRate)
	pattern := filepath.Join(outputDir, strings.ReplaceAll(stem, "%", "%%")+"_%03d.wav")
	s.logger.Debug("splitting audio",
		zap.String("input", inputPath),
		zap.Int("segment_seconds", seconds),
		zap.Int64("budget_bytes", budgetBytes))

	_, stderr, runErr := s.run(ctx, s.ffmpeg,
		"-i", inputPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(seconds),
		"-c", "copy",
		pattern,
		"-y",
		"-loglevel", "error",
	)
	if runErr != nil {
		return nil, errors.Conversion("ffmpeg segment", runErr, string(stderr))
	}

	segments, err := listSegments(outputDir, stem)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.Conversion("ffmpeg segment produced no files", nil, string(stderr))
	}
	return segments, nil
}

// listSegments returns <stem>_<digits>.wav files in dir in index order. For
// zero-padded names this is the same as sorting by name.
func listSegments(dir, stem string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read segment directory %s", dir)
	}

	prefix := stem + "_"
	type segment struct {
		path  string
		index int
	}
	var found []segment
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".wav") {
			continue
		}
		index := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".wav")
		n, err := strconv.Atoi(index)
		if err != nil || n < 0 || strings.Trim(index, "0123456789") != "" {
			continue
		}
		found = append(found, segment{path: filepath.Join(dir, name), index: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })

	out := make([]string, 0, len(found))
	for _, seg := range found {
		out = append(out, seg.path)
	}
	return out, nil
}

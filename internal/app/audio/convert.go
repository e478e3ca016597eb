package audio

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"media2text/internal/app/errors"
	"media2text/internal/app/model"
)

// MediaConverter turns arbitrary media into normalized audio.
type MediaConverter interface {
	ExtractAudio(ctx context.Context, inputPath, outputDir string) (string, error)
	DetectMediaType(ctx context.Context, inputPath string) (model.MediaType, error)
	Duration(ctx context.Context, inputPath string) (float64, error)
}

// FFmpegConverter implements MediaConverter with ffmpeg and ffprobe.
type FFmpegConverter struct {
	tools
}

func NewFFmpegConverter(opts ...Option) *FFmpegConverter {
	return &FFmpegConverter{tools: newTools(opts)}
}

// ExtractAudio drops any video stream and writes <outputDir>/<stem>_16khz.wav
// as 16 kHz mono 16-bit PCM.
func (c *FFmpegConverter) ExtractAudio(ctx context.Context, inputPath, outputDir string) (string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", errors.NotFound("media file", inputPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create workspace %s", outputDir)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, stem+"_16khz.wav")

	c.logger.Debug("extracting audio", zap.String("input", inputPath), zap.String("output", outputPath))
	_, stderr, err := c.run(ctx, c.ffmpeg,
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
		"-y",
		"-loglevel", "error",
	)
	if err != nil {
		return "", errors.Conversion("ffmpeg extract audio", err, string(stderr))
	}
	return outputPath, nil
}

// DetectMediaType returns VIDEO when ffprobe finds a video stream. If the
// probe itself fails the file is treated as AUDIO and the returned error is nil.
func (c *FFmpegConverter) DetectMediaType(ctx context.Context, inputPath string) (model.MediaType, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", errors.NotFound("media file", inputPath)
	}

	stdout, stderr, err := c.run(ctx, c.ffprobe, "-v", "quiet", "-print_format", "json", "-show_streams", inputPath)
	if err != nil {
		c.logger.Warn("ffprobe failed, assuming audio",
			zap.String("input", inputPath),
			zap.String("stderr", strings.TrimSpace(string(stderr))),
			zap.Error(err))
		return model.MediaTypeAudio, nil
	}

	var probe model.FFProbeOutput
	if err := json.Unmarshal(stdout, &probe); err != nil {
		c.logger.Warn("unreadable ffprobe output, assuming audio", zap.String("input", inputPath), zap.Error(err))
		return model.MediaTypeAudio, nil
	}
	if probe.HasVideo() {
		return model.MediaTypeVideo, nil
	}
	return model.MediaTypeAudio, nil
}

// Duration returns the container duration in seconds.
func (c *FFmpegConverter) Duration(ctx context.Context, inputPath string) (float64, error) {
	return probeDuration(ctx, c.run, c.ffprobe, inputPath)
}

func probeDuration(ctx context.Context, run CommandRunner, ffprobe, filePath string) (float64, error) {
	stdout, stderr, err := run(ctx, ffprobe, "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	if err != nil {
		return 0, errors.Conversion("ffprobe duration", err, string(stderr))
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(stdout)), 64)
	if err != nil {
		return 0, errors.Conversion("ffprobe duration", err, string(stdout))
	}
	return duration, nil
}

package converter

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type ProgressConfig struct {
	Enabled bool
	// Writer defaults to stderr.
	Writer io.Writer
}

// ShouldShowProgress reports whether bars should be drawn: always when
// forced, otherwise only when stderr is a terminal.
func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}
	stat, err := os.Stderr.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice != 0
}

// ProgressAwareConverter draws one bar tick per processed file.
type ProgressAwareConverter struct {
	*Converter
	config ProgressConfig
}

func NewProgressAwareConverter(converter *Converter, config ProgressConfig) *ProgressAwareConverter {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	return &ProgressAwareConverter{Converter: converter, config: config}
}

func (pac *ProgressAwareConverter) Run(ctx context.Context, opts RunOptions) (RunReport, error) {
	if !pac.config.Enabled {
		return pac.Converter.Run(ctx, opts)
	}

	progress := mpb.NewWithContext(ctx,
		mpb.WithOutput(pac.config.Writer),
		mpb.WithRefreshRate(120*time.Millisecond))
	var bar *mpb.Bar
	last := time.Now()

	report, err := pac.run(ctx, opts,
		func(total int) {
			if total == 0 {
				return
			}
			bar = progress.AddBar(int64(total),
				mpb.PrependDecorators(
					decor.Name(barLabel(opts.Project), decor.WCSyncSpaceR),
					decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30), "done"),
				),
			)
		},
		func(string, error) {
			if bar == nil {
				return
			}
			bar.EwmaIncrement(time.Since(last))
			last = time.Now()
		},
	)
	if bar != nil {
		// Marks the bar complete even when the run stopped early.
		bar.SetTotal(-1, true)
	}
	progress.Wait()
	return report, err
}

func barLabel(project string) string {
	if project == "" {
		return "Transcribing"
	}
	return "Transcribing (" + project + ")"
}

package process

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"media2text/cmd/m2t/cmd/flags"
	"media2text/internal/app"
	"media2text/internal/app/converter"
)

var (
	inputDir    string
	project     string
	description string
	event       string
	eventDate   string
	language    string
	diarization bool
	limit       int
	progress    bool
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "input", "i", "", "input directory (default paths.input)")
	Cmd.Flags().StringVarP(&project, "project", "p", "", "project the files belong to")
	Cmd.Flags().StringVar(&description, "description", "", "description stored on every file")
	Cmd.Flags().StringVarP(&event, "event", "e", "", "event name stored on every file")
	Cmd.Flags().StringVarP(&eventDate, "date", "d", "", "event date, YYYY-MM-DD")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "spoken language hint, e.g. en or fr")
	Cmd.Flags().BoolVar(&diarization, "diarization", false, "label speakers in the transcript")
	Cmd.Flags().IntVarP(&limit, "limit", "n", 0, "process at most n files, 0 for all")
	Cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar even without a terminal")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Transcribe every new media file of the input directory",
	Long: `Transcribe every new media file of the input directory

- Files already present in the archive are skipped
- Audio is extracted to 16 kHz mono wav and split to fit the transcription API
- The merged transcript is cleaned by the configured LLM
- Successful files are moved to the archive, failed files stay in place`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.LoadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("language") {
			cfg.Pipeline.Language = language
		}
		if cmd.Flags().Changed("diarization") {
			cfg.Pipeline.Diarization = diarization
		}
		date, err := flags.ParseDate(eventDate)
		if err != nil {
			return err
		}
		if inputDir == "" {
			inputDir = cfg.Paths.Input
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipeline, cleanup, err := app.InitializePipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		pac := converter.NewProgressAwareConverter(pipeline.Converter, converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(progress),
		})
		report, runErr := pac.Run(ctx, converter.RunOptions{
			InputDir: inputDir,
			Limit:    limit,
			FileOptions: converter.FileOptions{
				Project:     project,
				Description: description,
				Event:       event,
				EventDate:   date,
				Language:    cfg.Pipeline.Language,
				Diarization: cfg.Pipeline.Diarization,
			},
		})

		if path := cfg.Metrics.TextfilePath; path != "" {
			if err := pipeline.Metrics.WriteTextfile(path); err != nil {
				pipeline.Logger.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
			}
		}
		if runErr != nil {
			return runErr
		}

		fmt.Fprintf(cmd.OutOrStdout(), "processed %d, failed %d, skipped %d\n",
			len(report.Processed), len(report.Failed), len(report.Skipped))
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d file(s) failed: %v", len(report.Failed), report.Failed)
		}
		return nil
	},
}

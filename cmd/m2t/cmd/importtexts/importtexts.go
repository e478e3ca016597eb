package importtexts

import (
	"fmt"

	"github.com/spf13/cobra"

	"media2text/cmd/m2t/cmd/flags"
	"media2text/internal/app"
	"media2text/internal/app/converter"
)

var (
	textDir   string
	project   string
	event     string
	eventDate string
	language  string
	modelUsed string
)

func init() {
	Cmd.Flags().StringVarP(&textDir, "dir", "i", "", "directory holding .txt transcripts")
	Cmd.Flags().StringVarP(&project, "project", "p", "", "project the transcripts belong to")
	Cmd.Flags().StringVarP(&event, "event", "e", "", "event name stored on every record")
	Cmd.Flags().StringVarP(&eventDate, "date", "d", "", "event date, YYYY-MM-DD")
	Cmd.Flags().StringVarP(&language, "language", "l", "", "language of the transcripts")
	Cmd.Flags().StringVar(&modelUsed, "model", converter.ImportModel, "model name recorded on the transcriptions")

	Cmd.MarkFlagRequired("dir")
}

// Cmd represents the import-texts command
var Cmd = &cobra.Command{
	Use:   "import-texts",
	Short: "Store existing .txt transcripts as completed transcriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.LoadConfig(cmd)
		if err != nil {
			return err
		}
		date, err := flags.ParseDate(eventDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		importer, cleanup, err := app.InitializeImporter(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := importer.Converter.ImportTexts(ctx, textDir, converter.ImportOptions{
			Project:   project,
			Event:     event,
			EventDate: date,
			Language:  language,
			ModelUsed: modelUsed,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d, failed %d\n", len(report.Processed), len(report.Failed))
		return nil
	},
}

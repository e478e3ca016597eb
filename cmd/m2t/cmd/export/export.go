package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"media2text/cmd/m2t/cmd/flags"
	"media2text/internal/app"
	"media2text/internal/app/converter/export"
)

var project string
var outputFilePath string

func init() {
	Cmd.Flags().StringVarP(&project, "project", "p", "", "only export this project")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "xlsx file to write")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transcriptions to excel",
	Long: `Export stored transcriptions to excel

- One row per transcription, oldest first
- Without --project every project is exported`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.LoadConfig(cmd)
		if err != nil {
			return err
		}

		dao, cleanup, err := app.InitializeStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		transcriptions, err := dao.ListTranscriptions(cmd.Context(), project)
		if err != nil {
			return err
		}
		if err := export.ToExcel(transcriptions, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d transcription(s) to %v\n", len(transcriptions), outputFilePath)
		return nil
	},
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"media2text/cmd/m2t/cmd/export"
	"media2text/cmd/m2t/cmd/flags"
	"media2text/cmd/m2t/cmd/importtexts"
	"media2text/cmd/m2t/cmd/initdb"
	"media2text/cmd/m2t/cmd/process"
	"media2text/cmd/m2t/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "m2t",
	Short: "Batch transcribe audio and video files into searchable text",
	Long: `Batch transcribe audio and video files into searchable text.
- Drop media files into the input folder
- m2t process extracts audio, splits it, transcribes every segment
  and cleans the merged text with an LLM
- Transcriptions are saved to sqlite or postgres and the source file is archived`,
	SilenceUsage:     true,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(importtexts.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(initdb.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringP(flags.Config, "c", "", "config file (defaults are used when empty)")
	rootCmd.PersistentFlags().BoolP(flags.Verbose, "V", false, "verbose output")
}

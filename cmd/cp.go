package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy transcript from YouTube to the clipboard",
	Example: `  # Copy transcript from YouTube captions
  ytt cp "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytt cp dQw4w9WgXcQ

  # Copy as WebVTT
  ytt cp dQw4w9WgXcQ -f vtt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, addTimestamps, err := internal.FormatOptions(cmd, config)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		return app.CopyTranscript(cmd.Context(), args[0], format, addTimestamps)
	},
}

func init() {
	internal.AddFormatFlags(cpCmd)
	internal.AddFetchFlags(cpCmd)
	rootCmd.AddCommand(cpCmd)
}

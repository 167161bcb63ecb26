package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get metadata from YouTube video",
	Example: `  # Get metadata from YouTube video
  ytt metadata "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytt metadata dQw4w9WgXcQ

  # Save metadata to file
  ytt metadata dQw4w9WgXcQ -o metadata.json

  # Format output as pretty JSON
  ytt metadata dQw4w9WgXcQ --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		metadata, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		// Convert metadata to JSON
		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			jsonData, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
				return fmt.Errorf("%w: saving metadata: %w", internal.ErrIOFailure, err)
			}
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}

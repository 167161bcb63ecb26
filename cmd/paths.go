package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  ytt paths`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		configFile := config.ConfigFile
		if configFile == "" {
			configFile = "(none, using defaults)"
		}
		fmt.Fprintf(out, "Config directory: %s\n", config.ConfigDir)
		fmt.Fprintf(out, "Config file: %s\n", configFile)
		fmt.Fprintf(out, "Cache directory: %s\n", config.CacheDir)
		fmt.Fprintf(out, "MCP log file: %s\n", config.LogFile())
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

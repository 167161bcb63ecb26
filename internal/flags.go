package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AddFormatFlags adds flags controlling how a transcript is rendered
func AddFormatFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", fmt.Sprintf("Output format (%s)", strings.Join(FormatNames(), ", ")))
	cmd.Flags().Bool("add-timestamps", false, "Prefix each line with [M:SS] in text format")
}

// AddOutputFlags adds flags controlling where a transcript goes
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "Also print the transcript when saving or copying it")
	cmd.Flags().BoolP("clipboard", "c", false, "Copy the transcript to the clipboard")
}

// AddFetchFlags adds flags related to caption retrieval
func AddFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("languages", "l", nil, "Preferred caption languages, in order (e.g. de,en)")
	cmd.Flags().String("backend", "", fmt.Sprintf("Caption backend (%s)", strings.Join(Backends, ", ")))
}

// HandleDebugFlag processes the persistent --debug flag to update config
func HandleDebugFlag(cmd *cobra.Command, config *Config) error {
	flag := cmd.Flags().Lookup("debug")
	if flag == nil || !flag.Changed {
		return nil
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return fmt.Errorf("failed to get debug flag: %w", err)
	}
	config.Debug = debug
	return nil
}

// HandleFetchFlags overrides the configured languages and backend with explicit flags
func HandleFetchFlags(cmd *cobra.Command, config *Config) error {
	if cmd.Flags().Changed("languages") {
		languages, err := cmd.Flags().GetStringSlice("languages")
		if err != nil {
			return fmt.Errorf("failed to get languages flag: %w", err)
		}
		config.Languages = normalizeLanguages(languages)
	}

	if cmd.Flags().Changed("backend") {
		backend, err := cmd.Flags().GetString("backend")
		if err != nil {
			return fmt.Errorf("failed to get backend flag: %w", err)
		}
		config.Backend = strings.ToLower(strings.TrimSpace(backend))
	}
	return nil
}

// FormatOptions resolves --format and --add-timestamps, falling back to config.
// The format is returned unvalidated so the App reports it before fetching.
func FormatOptions(cmd *cobra.Command, config *Config) (string, bool, error) {
	format := config.Format
	if cmd.Flags().Changed("format") {
		f, err := cmd.Flags().GetString("format")
		if err != nil {
			return "", false, fmt.Errorf("failed to get format flag: %w", err)
		}
		format = f
	}

	addTimestamps := config.AddTimestamps
	if cmd.Flags().Changed("add-timestamps") {
		v, err := cmd.Flags().GetBool("add-timestamps")
		if err != nil {
			return "", false, fmt.Errorf("failed to get add-timestamps flag: %w", err)
		}
		addTimestamps = v
	}
	return format, addTimestamps, nil
}

// BuildRequest assembles a transcript request from the root command's arguments and flags
func BuildRequest(cmd *cobra.Command, args []string, config *Config) (Request, error) {
	format, addTimestamps, err := FormatOptions(cmd, config)
	if err != nil {
		return Request{}, err
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return Request{}, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	clipboard, err := cmd.Flags().GetBool("clipboard")
	if err != nil {
		return Request{}, fmt.Errorf("failed to get clipboard flag: %w", err)
	}

	req := Request{
		Input:         args[0],
		Format:        format,
		AddTimestamps: addTimestamps,
		Verbose:       verbose,
		Clipboard:     clipboard,
	}
	if len(args) > 1 {
		req.OutputFile = args[1]
	}
	return req, nil
}

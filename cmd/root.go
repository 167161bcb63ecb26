package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

var (
	config *internal.Config
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytt [YouTube URL or ID] [output file]",
	Short: "YouTube Transcript - fetch and format YouTube captions",
	Long: `ytt downloads the existing captions of a YouTube video and renders them
as plain text, JSON, SRT or WebVTT.

The transcript is printed to stdout unless an output file or --clipboard is
given. Output files without an extension get the one matching --format.`,
	Example: `  # Print the transcript of a video
  ytt "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  ytt dQw4w9WgXcQ

  # Plain text with [M:SS] timestamps
  ytt dQw4w9WgXcQ --add-timestamps

  # Save as SRT subtitles (writes talk.srt)
  ytt dQw4w9WgXcQ talk -f srt

  # Prefer German captions, fall back to English
  ytt dQw4w9WgXcQ -l de,en

  # Copy to the clipboard and also print it
  ytt dQw4w9WgXcQ -c -v`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := internal.BuildRequest(cmd, args, config)
		if err != nil {
			return err
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		err = app.Run(cmd.Context(), req)
		if errors.Is(err, internal.ErrInvalidVideoID) && internal.IsLikelyCommand(req.Input) {
			return commandSuggestion(cmd.Root(), req.Input, err)
		}
		return err
	},
}

// loadConfig reads the config file and applies flags that override it
func loadConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")

	var err error
	config, err = internal.InitConfig(configFile)
	if err != nil {
		return err
	}

	if err := internal.EnsureDirs(config.ConfigDir, config.CacheDir); err != nil {
		return fmt.Errorf("creating XDG directories: %w", err)
	}

	// Only seed the default location, never an explicit --config path
	if configFile == "" {
		if _, err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
		}
	}

	if err := internal.HandleDebugFlag(cmd, config); err != nil {
		return err
	}
	if err := internal.HandleFetchFlags(cmd, config); err != nil {
		return err
	}

	logger = internal.NewLogger(config)
	logger.Debug().
		Str("config_file", config.ConfigFile).
		Str("backend", config.Backend).
		Strs("languages", config.Languages).
		Msg("config loaded")
	return nil
}

// newApp creates the App with the CLI logger plus any extra options
func newApp(options ...internal.AppOption) (*internal.App, error) {
	options = append([]internal.AppOption{internal.WithAppLogger(logger)}, options...)
	return internal.NewApp(config, options...)
}

// commandSuggestion explains an argument that looks like a mistyped subcommand
func commandSuggestion(root *cobra.Command, arg string, err error) error {
	var available []string
	for _, c := range root.Commands() {
		available = append(available, c.Name())
	}

	if suggestions := internal.SuggestCommands(arg, available); len(suggestions) > 0 {
		return fmt.Errorf("%w: '%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?",
			internal.ErrInvalidVideoID, arg, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("%w. Use --help to see available commands", err)
}

// printError writes a concise, styled error line
func printError(w io.Writer, err error) {
	out := termenv.NewOutput(w)
	label := out.String("Error:").Foreground(out.Color("1")).Bold()
	fmt.Fprintf(w, "%s %v\n", label, err)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Cancel in-flight fetches on Ctrl+C; yt-dlp temp dirs are removed by their deferred cleanup
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			err = errors.New("interrupted")
		}
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	internal.AddFormatFlags(rootCmd)
	internal.AddOutputFlags(rootCmd)
	internal.AddFetchFlags(rootCmd)
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/ytt/config.toml)")
}

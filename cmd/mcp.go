package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/ytt/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for ytt",
	Long: `Run a Model Context Protocol (MCP) server that exposes ytt functionality as tools.

The MCP server provides two tools:
- get_transcript: Fetch existing captions as text, JSON, SRT or WebVTT
- get_video_metadata: Extract video metadata as formatted text

This allows AI assistants to use ytt capabilities through the MCP protocol.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: Streamable HTTP transport on specified port (use --port to configure)

Set mcp_log = true in the config file to log tool calls to the cache directory.`,
	Example: `  # Run MCP server with stdio transport (e.g. for Claude Desktop)
  ytt mcp

  # Run MCP server with HTTP transport on port 8080
  ytt mcp --transport=http --port=8080

  # Set up Claude Desktop integration
  ytt mcp setup-claude`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP uses stdio protocol, so no progress or status output
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		mcpLog, closer := internal.NewMCPLogger(config)
		defer closer.Close()

		app, err := internal.NewApp(config, internal.WithAppLogger(mcpLog))
		if err != nil {
			return err
		}

		mcpServer := internal.NewMCPServer(app, version, mcpLog)

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

// setupClaudeCmd represents the setup-claude subcommand
var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Configure Claude Desktop to use ytt MCP server",
	Long: `Automatically configure Claude Desktop to use ytt as an MCP server.

This command will:
- Detect Claude Desktop installation and config location
- Add ytt MCP server configuration to claude_desktop_config.json
- Preserve existing MCP server configurations
- Set appropriate XDG environment variables for the current platform`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupClaudeDesktop(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Successfully configured Claude Desktop MCP server")
		fmt.Fprintln(cmd.OutOrStdout(), "Restart Claude Desktop to use the ytt MCP server")
		return nil
	},
}

// MCPServerConfig represents an individual MCP server configuration
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// setupClaudeDesktop implements the setup-claude subcommand
func setupClaudeDesktop() error {
	// Get the path to the current binary
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("getting executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	configPath, err := getClaudeDesktopConfigPath()
	if err != nil {
		return fmt.Errorf("getting Claude Desktop config path: %w", err)
	}

	// XDG base paths so the server finds the same config and cache as the CLI
	env := map[string]string{
		"XDG_CONFIG_HOME": xdg.ConfigHome,
		"XDG_CACHE_HOME":  xdg.CacheHome,
	}

	return addClaudeServer(configPath, MCPServerConfig{
		Command: execPath,
		Args:    []string{"mcp"},
		Env:     env,
	})
}

// addClaudeServer adds or replaces the ytt entry in claude_desktop_config.json.
// Other top-level keys and servers are kept as they are.
func addClaudeServer(configPath string, server MCPServerConfig) error {
	// Check if config file exists - abort if it doesn't
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config for Claude Desktop not found at %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading existing config: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing existing config: %w", err)
	}
	if doc == nil {
		doc = make(map[string]json.RawMessage)
	}

	servers := make(map[string]json.RawMessage)
	if raw, ok := doc["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers: %w", err)
		}
		if servers == nil {
			servers = make(map[string]json.RawMessage)
		}
	}

	entry, err := json.Marshal(server)
	if err != nil {
		return fmt.Errorf("marshaling server config: %w", err)
	}
	servers[internal.AppName] = entry

	if doc["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("marshaling mcpServers: %w", err)
	}

	data, err = json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// getClaudeDesktopConfigPath returns the platform-specific config path for Claude Desktop
func getClaudeDesktopConfigPath() (string, error) {
	var configPath string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, "Library", "Application Support", "Claude", "claude_desktop_config.json")

	case "windows":
		// Windows: %APPDATA%/Claude/claude_desktop_config.json
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		configPath = filepath.Join(appData, "Claude", "claude_desktop_config.json")

	case "linux":
		// Linux: ~/.config/Claude/claude_desktop_config.json
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configPath = filepath.Join(homeDir, ".config", "Claude", "claude_desktop_config.json")

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return configPath, nil
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	internal.AddFetchFlags(mcpCmd)
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}

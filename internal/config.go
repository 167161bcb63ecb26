package internal

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName is used for XDG directories and the environment prefix
const AppName = "ytt"

// Config holds application settings
type Config struct {
	// User configurable settings
	Format        string
	AddTimestamps bool
	Languages     []string
	Backend       string
	Timeout       time.Duration
	Debug         bool
	MCPLogEnabled bool

	// Set per invocation, not read from the config file
	Quiet bool

	// Fixed XDG paths (not configurable)
	ConfigDir  string
	CacheDir   string
	ConfigFile string
}

//go:embed config.toml
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) (bool, error) {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return false, nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return false, fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return false, fmt.Errorf("writing default %s: %w", description, err)
	}

	return true, nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) (bool, error) {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// InitConfig loads configuration from the XDG config directory, or from configFile when set
func InitConfig(configFile string) (*Config, error) {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)
	return loadConfig(configFile, configDir, cacheDir)
}

func loadConfig(configFile, configDir, cacheDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("format", string(FormatText))
	v.SetDefault("add_timestamps", false)
	v.SetDefault("languages", []string{"en"})
	v.SetDefault("backend", BackendInnertube)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("debug", false)
	v.SetDefault("mcp_log", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &Config{
		Format:        v.GetString("format"),
		AddTimestamps: v.GetBool("add_timestamps"),
		Languages:     normalizeLanguages(v.GetStringSlice("languages")),
		Backend:       v.GetString("backend"),
		Timeout:       v.GetDuration("timeout"),
		Debug:         v.GetBool("debug"),
		MCPLogEnabled: v.GetBool("mcp_log"),

		ConfigDir:  configDir,
		CacheDir:   cacheDir,
		ConfigFile: v.ConfigFileUsed(),
	}

	return config, nil
}

// normalizeLanguages splits comma separated entries so "de,en" and ["de", "en"] agree
func normalizeLanguages(in []string) []string {
	var out []string
	for _, entry := range in {
		for lang := range strings.SplitSeq(entry, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				out = append(out, lang)
			}
		}
	}
	if len(out) == 0 {
		return []string{"en"}
	}
	return out
}

// LogFile is where the MCP server writes its log when enabled
func (c *Config) LogFile() string {
	return filepath.Join(c.CacheDir, "mcp.log")
}

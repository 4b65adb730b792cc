package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all vqa configuration.
type Config struct {
	// Submission client
	Client ClientConfig `yaml:"client"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Hover-to-speak answers
	Speech SpeechConfig `yaml:"speech"`

	// Reference inference server (vqa serve)
	Server ServerConfig `yaml:"server"`
	Gemini GeminiConfig `yaml:"gemini"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ClientConfig configures where submissions go.
type ClientConfig struct {
	Endpoint string `yaml:"endpoint"`
	// Empty means no deadline.
	RequestTimeout string `yaml:"request_timeout"`
}

// UIConfig configures the form.
type UIConfig struct {
	Theme    string `yaml:"theme"` // auto, light, dark
	WordWrap int    `yaml:"word_wrap"`
}

// SpeechConfig configures the speech synthesizer.
type SpeechConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command string   `yaml:"command"` // empty: autodetect
	Args    []string `yaml:"args"`
}

// ServerConfig configures vqa serve.
type ServerConfig struct {
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
}

// GeminiConfig configures the answerer behind vqa serve.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Endpoint: "http://localhost:8000/vqa",
		},
		UI: UIConfig{
			Theme:    "auto",
			WordWrap: 80,
		},
		Speech: SpeechConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Listen:         ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    20,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultDir returns the project-local .vqa directory when it exists or can
// be created, otherwise ~/.vqa.
func DefaultDir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".vqa")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vqa"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	dir, err := DefaultDir()
	if err != nil {
		return filepath.Join(".vqa", "config.yaml")
	}
	return filepath.Join(dir, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if endpoint := os.Getenv("VQA_ENDPOINT"); endpoint != "" {
		c.Client.Endpoint = endpoint
	}
	if theme := os.Getenv("VQA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if listen := os.Getenv("VQA_LISTEN"); listen != "" {
		c.Server.Listen = listen
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if os.Getenv("VQA_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// GetRequestTimeout returns the client request timeout; zero means none.
func (c *Config) GetRequestTimeout() time.Duration {
	if strings.TrimSpace(c.Client.RequestTimeout) == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Client.RequestTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MaxUploadBytes returns the server upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return int64(c.Server.MaxUploadMB) << 20
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// Validate validates the client-side configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid client endpoint %q: must be an absolute http(s) URL", c.Client.Endpoint)
	}

	if c.Client.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.Client.RequestTimeout); err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", c.Client.RequestTimeout, err)
		}
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}
	return nil
}

// ValidateServer validates the settings vqa serve needs.
func (c *Config) ValidateServer() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured (set GEMINI_API_KEY or gemini.api_key)")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is empty")
	}
	return nil
}

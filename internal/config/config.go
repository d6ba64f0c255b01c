// Package config loads askai configuration.
// Source priority (highest to lowest):
// 1. CLI flags (applied by cmd)
// 2. Environment variables, including a .env file in the working directory
// 3. Config file given by --config, or ~/.config/askai/config.yaml
// 4. Built-in defaults and providers_default.yaml
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed providers_default.yaml
var defaultProvidersYAML []byte

// ProviderDefaults holds the default base URL and model for a provider.
type ProviderDefaults struct {
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
}

// LoadProviderDefaults parses the embedded defaults and merges any user
// overrides from ~/.config/askai/providers.yaml.
func LoadProviderDefaults() map[string]ProviderDefaults {
	defs := make(map[string]ProviderDefaults)
	_ = yaml.Unmarshal(defaultProvidersYAML, &defs)

	dir, err := Dir()
	if err != nil {
		return defs
	}
	data, err := os.ReadFile(filepath.Join(dir, "providers.yaml"))
	if err != nil {
		return defs
	}
	userDefs := make(map[string]ProviderDefaults)
	if yaml.Unmarshal(data, &userDefs) != nil {
		return defs
	}
	for name, ud := range userDefs {
		d := defs[name]
		if ud.BaseURL != "" {
			d.BaseURL = ud.BaseURL
		}
		if ud.DefaultModel != "" {
			d.DefaultModel = ud.DefaultModel
		}
		defs[name] = d
	}
	return defs
}

// ProviderConfig holds configuration for a single provider.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ServerConfig configures `askai serve`.
type ServerConfig struct {
	Port int `yaml:"port"`
	// AllowedOrigins are the browser origins CORS lets through.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ClientConfig configures how chat front-ends reach the relay.
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	// RequestTimeoutSec bounds one /ask-ai call. 0 = no client-side limit.
	RequestTimeoutSec int `yaml:"request_timeout_sec"`
}

// StorageConfig selects where chat history lives.
type StorageConfig struct {
	// Driver: "file" (default) | "sqlite" | "memory"
	Driver string `yaml:"driver"`
	// Path is the directory (file) or database file (sqlite). Empty = under
	// ~/.local/share/askai.
	Path string `yaml:"path"`
}

type LogConfig struct {
	// Level: "debug" | "info" (default) | "warn" | "error"
	Level string `yaml:"level"`
	// Format: "console" (default) | "json"
	Format string `yaml:"format"`
	// File, when set, sends logs to a rotating file instead of stderr.
	File string `yaml:"file"`
}

// Config is the full askai configuration.
type Config struct {
	// Provider is the LLM backend the relay forwards to ("gemini", "openai", "anthropic", ...).
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`

	Providers map[string]*ProviderConfig `yaml:"providers"`

	// SystemPrompt is prepended to every relayed prompt. Empty = none.
	SystemPrompt string `yaml:"system_prompt"`

	// MaxTokens caps the generated answer. 0 = provider default.
	MaxTokens int `yaml:"max_tokens"`

	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// Defaults shared with other packages.
const (
	DefaultPort   = 3001
	DefaultOrigin = "http://localhost:5173"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:  "gemini",
		Providers: make(map[string]*ProviderConfig),
		Server: ServerConfig{
			Port:           DefaultPort,
			AllowedOrigins: []string{DefaultOrigin},
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:" + strconv.Itoa(DefaultPort),
		},
		Storage: StorageConfig{Driver: "file"},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Dir returns ~/.config/askai.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	return filepath.Join(home, ".config", "askai"), nil
}

// Load reads the config file and merges environment variable overrides.
// A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		if dir, err := Dir(); err == nil {
			configPath = filepath.Join(dir, "config.yaml")
		}
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "invalid config file %s", configPath)
		}
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// silently ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	return nil
}

// GetProviderConfig returns the config for the named provider, or an empty config if not found.
func (c *Config) GetProviderConfig(name string) *ProviderConfig {
	if pc, ok := c.Providers[name]; ok && pc != nil {
		return pc
	}
	return &ProviderConfig{}
}

var (
	// KnownProviderBaseURLs maps well-known provider names to their base URLs.
	KnownProviderBaseURLs map[string]string

	// KnownProviderModels maps well-known provider names to their default models.
	KnownProviderModels map[string]string
)

func init() {
	defs := LoadProviderDefaults()
	KnownProviderBaseURLs = make(map[string]string, len(defs))
	KnownProviderModels = make(map[string]string, len(defs))
	for name, d := range defs {
		if d.BaseURL != "" {
			KnownProviderBaseURLs[name] = d.BaseURL
		}
		if d.DefaultModel != "" {
			KnownProviderModels[name] = d.DefaultModel
		}
	}
}

// ResolvedProvider is everything needed to construct a provider client.
type ResolvedProvider struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

// ResolveProvider picks the active provider's key, endpoint and model:
// CLI/global model > provider config > known defaults.
func (c *Config) ResolveProvider() (ResolvedProvider, error) {
	name := c.Provider
	pc := c.GetProviderConfig(name)

	if pc.APIKey == "" {
		return ResolvedProvider{}, errors.Errorf(
			"API key not configured for provider %q.\n"+
				"Set it via:\n"+
				"  - config file: providers.%s.api_key\n"+
				"  - environment: LLM_API_KEY (or %s_API_KEY)",
			name, name, strings.ToUpper(name),
		)
	}

	rp := ResolvedProvider{Name: name, APIKey: pc.APIKey, BaseURL: pc.BaseURL, Model: c.Model}
	if rp.Model == "" {
		rp.Model = pc.Model
	}
	if rp.Model == "" {
		rp.Model = KnownProviderModels[name]
	}
	if rp.BaseURL == "" {
		rp.BaseURL = KnownProviderBaseURLs[name]
	}
	if rp.BaseURL == "" && name != "anthropic" {
		return ResolvedProvider{}, errors.Errorf("unknown provider %q; set providers.%s.base_url in config", name, name)
	}
	return rp, nil
}

func (c *Config) provider(name string) *ProviderConfig {
	if c.Providers[name] == nil {
		c.Providers[name] = &ProviderConfig{}
	}
	return c.Providers[name]
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Provider selection first, so LLM_* lands on the selected provider.
	if v := os.Getenv("ASKAI_PROVIDER"); v != "" {
		cfg.Provider = v
	}

	// Vendor-specific keys
	vendorKeys := map[string]string{
		"GEMINI_API_KEY":    "gemini",
		"OPENAI_API_KEY":    "openai",
		"ANTHROPIC_API_KEY": "anthropic",
	}
	for env, name := range vendorKeys {
		if v := os.Getenv(env); v != "" {
			cfg.provider(name).APIKey = v
		}
	}

	// Generic overrides
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.provider(cfg.Provider).APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.provider(cfg.Provider).BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ASKAI_MODEL"); v != "" {
		cfg.Model = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ASKAI_SERVER_URL"); v != "" {
		cfg.Client.ServerURL = v
	}
	if v := os.Getenv("ASKAI_STORAGE"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("ASKAI_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("ASKAI_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

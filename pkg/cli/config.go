package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".giztoy"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// APIKeyEnvVars are consulted in order when a context carries no API key.
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Export destination kinds.
const (
	ExportLocal = "local"
	ExportS3    = "s3"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name, which selects ~/.giztoy/<app>.
	AppName string `yaml:"-"`

	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	configPath string
}

// Context is one named set of generation and export settings.
type Context struct {
	Name string `yaml:"name"`

	// APIKey authenticates against the generation API. When empty the
	// environment variables in APIKeyEnvVars are used.
	APIKey string `yaml:"api_key,omitempty"`

	// Model overrides the default generation model.
	Model string `yaml:"model,omitempty"`

	// BaseURL overrides the API endpoint (optional).
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout is the request timeout in seconds. Zero means no timeout.
	Timeout int `yaml:"timeout,omitempty"`

	// Temperature and MaxTokens tune sampling. Zero leaves the model default.
	Temperature float32 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`

	// Export selects where the terminal surface writes slideshow.zip.
	Export *ExportConfig `yaml:"export,omitempty"`
}

// ExportConfig describes the archive destination.
type ExportConfig struct {
	// Kind is "local" (default) or "s3".
	Kind string `yaml:"kind,omitempty"`

	// Dir is the local output directory. Defaults to the working directory.
	Dir string `yaml:"dir,omitempty"`

	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`
}

// Validate checks that the destination is complete.
func (e *ExportConfig) Validate() error {
	switch e.Kind {
	case "", ExportLocal:
		return nil
	case ExportS3:
		if e.Bucket == "" {
			return fmt.Errorf("export: s3 destination requires a bucket")
		}
		return nil
	default:
		return fmt.Errorf("export: unknown kind %q (want %s or %s)", e.Kind, ExportLocal, ExportS3)
	}
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	configPath := customPath
	if configPath == "" {
		paths, err := NewPaths(appName)
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = paths.ConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		Contexts:   make(map[string]*Context),
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx.Export != nil {
			if err := ctx.Export.Validate(); err != nil {
				return nil, fmt.Errorf("context %q: %w", name, err)
			}
		}
	}

	cfg.AppName = appName
	cfg.configPath = configPath
	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// AddContext adds or replaces a context. The first context added becomes
// current.
func (c *Config) AddContext(name string, ctx *Context) error {
	if ctx.Temperature < 0 || ctx.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", ctx.Temperature)
	}
	if ctx.MaxTokens < 0 {
		return fmt.Errorf("negative max tokens: %d", ctx.MaxTokens)
	}
	if ctx.Export != nil {
		if err := ctx.Export.Validate(); err != nil {
			return err
		}
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context, or the current one when name is
// empty. With no name and no current context it returns an empty context so
// environment fallbacks still apply.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveAPIKey returns the context's key or the first non-empty
// environment fallback.
func (ctx *Context) ResolveAPIKey() string {
	if ctx.APIKey != "" {
		return ctx.APIKey
	}
	for _, env := range APIKeyEnvVars {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// ExportOrDefault returns the export destination, defaulting to the local
// working directory.
func (ctx *Context) ExportOrDefault() ExportConfig {
	if ctx.Export == nil {
		return ExportConfig{Kind: ExportLocal, Dir: "."}
	}
	e := *ctx.Export
	if e.Kind == "" {
		e.Kind = ExportLocal
	}
	if e.Kind == ExportLocal && e.Dir == "" {
		e.Dir = "."
	}
	return e
}

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

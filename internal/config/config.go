package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/semiresponsive/internal/errors"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "semiresponsive.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "semiresponsive.yaml"

	// DefaultAddress is the default server listen address.
	DefaultAddress = ":8080"

	// DefaultContainer selects the element the switcher binds to.
	DefaultContainer = "body"

	// DefaultPage is the built-in demo page.
	DefaultPage = "demo:"

	// DefaultWidth is assumed for server-side rendering when the request
	// carries no viewport client hint.
	DefaultWidth = 1024

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "30s"
)

// Config represents a semiresponsive.json / semiresponsive.yaml file.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Page is the page markup source: a file path, s3://bucket/key or demo:.
	Page string `json:"page,omitempty" yaml:"page,omitempty"`

	// Container is the CSS selector of the switcher's container element.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`

	// Switcher overrides class, attribute and parameter names.
	Switcher switcher.Config `json:"switcher,omitempty" yaml:"switcher,omitempty"`

	// Server contains HTTP/WebSocket server settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// S3 configures object storage access for s3:// pages.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`

	// Log configures the process logger.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Address is the address to listen on.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// DefaultWidth is the viewport width assumed for server-side rendering.
	DefaultWidth int `json:"defaultWidth,omitempty" yaml:"defaultWidth,omitempty"`

	// ShutdownTimeout is a duration string such as "30s".
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions,omitempty" yaml:"maxSessions,omitempty"`

	// SessionRate caps new sessions per second. 0 means no limit.
	SessionRate float64 `json:"sessionRate,omitempty" yaml:"sessionRate,omitempty"`

	// AllowedOrigins lists origins allowed by CORS and the WebSocket
	// origin check. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`

	// DisableMetrics turns off the /metrics endpoint.
	DisableMetrics bool `json:"disableMetrics,omitempty" yaml:"disableMetrics,omitempty"`

	// StaticDir is served ahead of the page. Relative paths resolve
	// against the config directory.
	StaticDir string `json:"staticDir,omitempty" yaml:"staticDir,omitempty"`

	// StaticPrefix is the URL prefix StaticDir is mounted at.
	StaticPrefix string `json:"staticPrefix,omitempty" yaml:"staticPrefix,omitempty"`

	// CacheStatic enables long-lived Cache-Control headers for static files.
	CacheStatic bool `json:"cacheStatic,omitempty" yaml:"cacheStatic,omitempty"`
}

// S3Config contains object storage settings.
type S3Config struct {
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty" yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty" yaml:"secretAccessKey,omitempty"`
	UsePathStyle    bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir, preferring semiresponsive.json over
// semiresponsive.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "semiresponsive.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No " + ConfigFileName + " or " + YAMLConfigFileName + " found in " + dir).
		WithSuggestion("Create one, or run without --config to use the built-in defaults")
}

// LoadFile reads configuration from a specific file. The format follows
// the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No config file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E101").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	default:
		return nil, errors.New("E104").
			WithDetail("Cannot read config format " + ext)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to where it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "config has no path")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E101").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Page == "" {
		c.Page = DefaultPage
	}
	if c.Container == "" {
		c.Container = DefaultContainer
	}
	c.Switcher = switcher.DefaultConfig().Merge(c.Switcher)

	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.DefaultWidth == 0 {
		c.Server.DefaultWidth = DefaultWidth
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	sw := c.Switcher
	for name, v := range map[string]string{
		"buttonClass":    sw.ButtonClass,
		"selectedClass":  sw.SelectedClass,
		"linkHrefAttr":   sw.LinkHrefAttr,
		"minWidthAttr":   sw.MinWidthAttr,
		"paramValueAttr": sw.ParamValueAttr,
	} {
		if strings.ContainsAny(v, " \t\n\"'=<>") {
			return errors.New("E102").
				WithDetail(name + " " + quote(v) + " contains whitespace or markup characters")
		}
	}
	if strings.ContainsAny(sw.ParamKey, "&=?# ") {
		return errors.New("E102").
			WithDetail("paramKey " + quote(sw.ParamKey) + " must not contain '&', '=', '?', '#' or spaces").
			WithSuggestion(`Use a plain word such as "view"`)
	}

	if c.Server.DefaultWidth < 0 {
		return errors.New("E103").WithDetail("server.defaultWidth must not be negative")
	}
	if c.Server.MaxSessions < 0 || c.Server.SessionRate < 0 {
		return errors.New("E103").WithDetail("server.maxSessions and server.sessionRate must not be negative")
	}
	if p := c.Server.StaticPrefix; p != "" && !strings.HasPrefix(p, "/") {
		return errors.New("E103").
			WithDetail("server.staticPrefix " + quote(p) + " must start with '/'")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return errors.New("E103").
			WithDetail("server.shutdownTimeout: " + err.Error()).
			WithSuggestion(`Use a Go duration such as "30s"`)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E102").WithDetail("log.level must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E102").WithDetail("log.format must be text or json")
	}
	return nil
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// PagePath resolves a relative file page against the config directory.
// URIs with a scheme are returned unchanged.
func (c *Config) PagePath() string {
	if strings.Contains(c.Page, ":") || filepath.IsAbs(c.Page) || c.Dir() == "" {
		return c.Page
	}
	return filepath.Join(c.Dir(), c.Page)
}

// StaticPath resolves server.staticDir against the config directory.
func (c *Config) StaticPath() string {
	dir := c.Server.StaticDir
	if dir == "" || filepath.IsAbs(dir) || c.Dir() == "" {
		return dir
	}
	return filepath.Join(c.Dir(), dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "semiresponsive.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func quote(s string) string {
	return `"` + s + `"`
}

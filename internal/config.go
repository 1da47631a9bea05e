package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage backends.
const (
	BackendNone     = ""
	BackendFS       = "fs"
	BackendSupabase = "supabase"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects and configures the preview object-store backend.
//
// Backend controls where previews live:
//   - "" (unconfigured): the service starts, but the catalog endpoint
//     answers 503 until a backend is configured.
//   - "fs": a local directory, served by this process.
//   - "supabase": a Supabase Storage bucket.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	FS       FSConfig       `yaml:"fs"`
	Supabase SupabaseConfig `yaml:"supabase"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(BackendNone, BackendFS, BackendSupabase)),
	); err != nil {
		return err
	}
	switch c.Backend {
	case BackendFS:
		return c.FS.Validate()
	case BackendSupabase:
		return c.Supabase.Validate()
	}
	return nil
}

// Configured reports whether any backend is selected.
func (c *StorageConfig) Configured() bool {
	return c.Backend != BackendNone
}

// FSConfig holds the local-directory backend settings.
type FSConfig struct {
	Path    string `yaml:"path"`
	BaseURL string `yaml:"base_url"`
}

// Validate validates the fs backend configuration.
func (c *FSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// SupabaseConfig holds the Supabase Storage backend settings. Key is
// typically supplied through env expansion, e.g. "${SUPABASE_SERVICE_KEY}".
type SupabaseConfig struct {
	URL            string `yaml:"url"`
	Key            string `yaml:"key"`
	Bucket         string `yaml:"bucket"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Validate validates the supabase backend configuration.
func (c *SupabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Key, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Min(0)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Backend: BackendFS,
			FS: FSConfig{
				Path:    "./previews",
				BaseURL: "/previews",
			},
			Supabase: SupabaseConfig{
				Bucket:         "previews",
				TimeoutSeconds: 15,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./previewdeck.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

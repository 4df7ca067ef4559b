package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by the login
// client and the mock API server
type Config struct {
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// APIConfig describes the remote login API
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	LoginPath      string        `yaml:"login_path"`
	LogoutPath     string        `yaml:"logout_path"`
	UserPath       string        `yaml:"user_path"`
	RegisterURL    string        `yaml:"register_url"`
	ForgotPassword string        `yaml:"forgot_password_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SessionConfig describes where the local session record lives
type SessionConfig struct {
	DBPath    string `yaml:"db_path"`
	Namespace string `yaml:"namespace"`
}

// LoggingConfig contains zerolog settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig contains settings for the mock login API
type ServerConfig struct {
	Port            int             `yaml:"port"`
	Host            string          `yaml:"host"`
	DBPath          string          `yaml:"db_path"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	MaxRequestBytes int64           `yaml:"max_request_bytes"`
	AllowedOrigins  []string        `yaml:"allowed_origins"`
	Headers         HeadersConfig   `yaml:"headers"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	TokenCacheSize  int             `yaml:"token_cache_size"`
	TrustProxy      bool            `yaml:"trust_proxy"` // honour X-Forwarded-For / X-Real-IP
	Users           []SeedUser      `yaml:"users"`
	Students        []SeedStudent   `yaml:"students"`
}

// HeadersConfig contains HTTP security header settings
type HeadersConfig struct {
	XFrameOptions       string `yaml:"x_frame_options"`
	XContentTypeOptions string `yaml:"x_content_type_options"`
	ReferrerPolicy      string `yaml:"referrer_policy"`
}

// RateLimitConfig mirrors the API's throttle settings
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window"`
	WindowDuration    time.Duration `yaml:"window_duration"`
	Burst             int           `yaml:"burst"`
}

// SeedUser is an account created in the mock server on startup
type SeedUser struct {
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// SeedStudent is a student record that may register an account
type SeedStudent struct {
	StudentID string `yaml:"student_id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Birthday  string `yaml:"birthday"` // YYYY-MM-DD
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			LoginPath:  "/api/login",
			LogoutPath: "/api/logout",
			UserPath:   "/api/user",
			Timeout:    15 * time.Second,
		},
		Session: SessionConfig{
			DBPath:    "./data/session.db",
			Namespace: "auth_prefs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Port:            8000,
			Host:            "localhost",
			DBPath:          "./data/mock.db",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestBytes: 1 << 20,
			Headers: HeadersConfig{
				XFrameOptions:       "DENY",
				XContentTypeOptions: "nosniff",
				ReferrerPolicy:      "strict-origin-when-cross-origin",
			},
			RateLimit: RateLimitConfig{
				RequestsPerWindow: 60,
				WindowDuration:    time.Minute,
			},
			TokenCacheSize: 512,
		},
	}
}

// Load reads configuration from the specified file path and validates
// every section. A missing file is not an error; defaults and environment
// overrides apply.
func Load(path string) (*Config, error) {
	return load(path, (*Config).Validate)
}

// LoadClient loads configuration for the login client; the server
// section is not validated
func LoadClient(path string) (*Config, error) {
	return load(path, (*Config).ValidateClient)
}

// LoadServer loads configuration for the mock API; the api and session
// sections are not validated
func LoadServer(path string) (*Config, error) {
	return load(path, (*Config).ValidateServer)
}

func load(path string, validate func(*Config) error) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if baseURL := os.Getenv("CAMPUS_API_URL"); baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if dbPath := os.Getenv("CAMPUS_DB_PATH"); dbPath != "" {
		cfg.Session.DBPath = dbPath
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks both the client and the server sections
func (c *Config) Validate() error {
	if err := c.ValidateClient(); err != nil {
		return err
	}
	return c.ValidateServer()
}

// ValidateClient checks the api and session sections
func (c *Config) ValidateClient() error {
	if c.API.BaseURL == "" || strings.Contains(c.API.BaseURL, "${") {
		return fmt.Errorf("api.base_url is required (set CAMPUS_API_URL environment variable)")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must start with http:// or https://")
	}
	if !strings.HasPrefix(c.API.LoginPath, "/") {
		return fmt.Errorf("api.login_path must start with /")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	if c.Session.DBPath == "" {
		return fmt.Errorf("session.db_path is required")
	}
	if c.Session.Namespace == "" {
		return fmt.Errorf("session.namespace is required")
	}

	return nil
}

// ValidateServer checks the mock API section
func (c *Config) ValidateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.DBPath == "" {
		return fmt.Errorf("server.db_path is required")
	}
	if c.Server.RateLimit.RequestsPerWindow < 1 {
		return fmt.Errorf("server.rate_limit.requests_per_window must be at least 1")
	}
	if c.Server.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("server.rate_limit.window_duration must be positive")
	}
	for i, u := range c.Server.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("server.users[%d] needs a username and password", i)
		}
	}
	for i, st := range c.Server.Students {
		if st.StudentID == "" || st.FirstName == "" || st.LastName == "" {
			return fmt.Errorf("server.students[%d] needs a student_id and names", i)
		}
		if _, err := time.Parse(time.DateOnly, st.Birthday); err != nil {
			return fmt.Errorf("server.students[%d].birthday must be YYYY-MM-DD", i)
		}
	}

	return nil
}

// LoginURL returns the absolute login endpoint
func (c *Config) LoginURL() string {
	return c.endpoint(c.API.LoginPath)
}

// LogoutURL returns the absolute logout endpoint
func (c *Config) LogoutURL() string {
	return c.endpoint(c.API.LogoutPath)
}

// UserURL returns the absolute current-user endpoint
func (c *Config) UserURL() string {
	return c.endpoint(c.API.UserPath)
}

func (c *Config) endpoint(path string) string {
	return strings.TrimRight(c.API.BaseURL, "/") + path
}

// GetAddr returns the full mock server address (host:port)
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

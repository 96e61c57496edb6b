// Package config reads settings for the client and the server from the
// environment, an optional .env file and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultAPIURL       = "http://localhost:8001/api"
	DefaultPollInterval = 3 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultDBPath       = "chancen.sqlite3"
	DefaultAddr         = ":8001"
	DefaultAdminEmail   = "admin@chancen.local"
)

// Client holds the command-line client's settings.
type Client struct {
	APIURL       string
	StoragePath  string
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	LogPath      string
	Verbose      bool
}

// Server holds the reference backend's settings.
type Server struct {
	DBPath     string
	Addr       string
	LogPath    string
	AdminEmail string
}

// LoadEnv loads the given .env files, or ".env" when none are given, into
// the process environment. Missing files are ignored and variables already
// set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// NewClient returns client settings from the environment.
func NewClient() *Client {
	return &Client{
		APIURL:       getEnv("CHANCEN_API_URL", DefaultAPIURL),
		StoragePath:  getEnv("CHANCEN_STORAGE", DefaultStoragePath()),
		PollInterval: getEnvAsDuration("CHANCEN_POLL_INTERVAL", DefaultPollInterval),
		HTTPTimeout:  getEnvAsDuration("CHANCEN_HTTP_TIMEOUT", DefaultHTTPTimeout),
		LogPath:      getEnv("CHANCEN_LOG", ""),
		Verbose:      getEnvAsBool("CHANCEN_VERBOSE", false),
	}
}

// NewServer returns server settings from the environment.
func NewServer() *Server {
	return &Server{
		DBPath:     getEnv("CHANCEN_DB", DefaultDBPath),
		Addr:       getEnv("CHANCEN_ADDR", DefaultAddr),
		LogPath:    getEnv("CHANCEN_LOG", ""),
		AdminEmail: getEnv("CHANCEN_ADMIN_EMAIL", DefaultAdminEmail),
	}
}

// DefaultStoragePath is the device storage file under the user's config
// directory, or in the working directory when there is none.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "chancen-client.sqlite3"
	}
	return filepath.Join(dir, "chancen", "storage.sqlite3")
}

// RegisterFlags binds the client flags to c. The current values are the
// defaults, so flags override the environment.
func (c *Client) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.APIURL, "api", c.APIURL, "")
	fs.StringVar(&c.APIURL, "a", c.APIURL, "")
	fs.StringVar(&c.StoragePath, "storage", c.StoragePath, "")
	fs.StringVar(&c.StoragePath, "s", c.StoragePath, "")
	fs.DurationVar(&c.PollInterval, "poll", c.PollInterval, "")
	fs.DurationVar(&c.PollInterval, "p", c.PollInterval, "")
	fs.DurationVar(&c.HTTPTimeout, "timeout", c.HTTPTimeout, "")
	fs.DurationVar(&c.HTTPTimeout, "t", c.HTTPTimeout, "")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "")
	fs.StringVar(&c.LogPath, "l", c.LogPath, "")
	fs.BoolVar(&c.Verbose, "verbose", c.Verbose, "")
	fs.BoolVar(&c.Verbose, "v", c.Verbose, "")
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Client) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.StoragePath == "" {
		return errors.New("storage path is required")
	}
	return nil
}

// RegisterFlags binds the server flags to s.
func (s *Server) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&s.DBPath, "db", s.DBPath, "")
	fs.StringVar(&s.DBPath, "d", s.DBPath, "")
	fs.StringVar(&s.Addr, "addr", s.Addr, "")
	fs.StringVar(&s.Addr, "a", s.Addr, "")
	fs.StringVar(&s.AdminEmail, "admin", s.AdminEmail, "")
	fs.StringVar(&s.AdminEmail, "u", s.AdminEmail, "")
	fs.StringVar(&s.LogPath, "log", s.LogPath, "")
	fs.StringVar(&s.LogPath, "l", s.LogPath, "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

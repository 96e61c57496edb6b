package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClientDefaults(t *testing.T) {
	for _, key := range []string{"CHANCEN_API_URL", "CHANCEN_POLL_INTERVAL", "CHANCEN_HTTP_TIMEOUT", "CHANCEN_VERBOSE"} {
		t.Setenv(key, "")
	}
	c := NewClient()
	if c.APIURL != DefaultAPIURL || c.PollInterval != DefaultPollInterval || c.HTTPTimeout != DefaultHTTPTimeout || c.Verbose {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.StoragePath == "" {
		t.Error("expected a default storage path")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestClientFromEnv(t *testing.T) {
	t.Setenv("CHANCEN_API_URL", "https://chancen.example.com/api")
	t.Setenv("CHANCEN_STORAGE", "/tmp/chancen.db")
	t.Setenv("CHANCEN_POLL_INTERVAL", "10s")
	t.Setenv("CHANCEN_HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("CHANCEN_VERBOSE", "true")

	c := NewClient()
	if c.APIURL != "https://chancen.example.com/api" || c.StoragePath != "/tmp/chancen.db" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %s", c.PollInterval)
	}
	if c.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("invalid duration should fall back, got %s", c.HTTPTimeout)
	}
	if !c.Verbose {
		t.Error("expected verbose")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CHANCEN_API_URL", "http://env.example.com/api")
	t.Setenv("CHANCEN_POLL_INTERVAL", "5s")

	c := NewClient()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-a", "http://flag.example.com/api", "-v", "chat"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.APIURL != "http://flag.example.com/api" {
		t.Errorf("APIURL = %s", c.APIURL)
	}
	if c.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %s, want env value", c.PollInterval)
	}
	if !c.Verbose || fs.Arg(0) != "chat" {
		t.Errorf("verbose=%v args=%v", c.Verbose, fs.Args())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Client)
		ok     bool
	}{
		{"valid", func(*Client) {}, true},
		{"relative url", func(c *Client) { c.APIURL = "/api" }, false},
		{"bad scheme", func(c *Client) { c.APIURL = "ftp://host/api" }, false},
		{"zero poll", func(c *Client) { c.PollInterval = 0 }, false},
		{"negative timeout", func(c *Client) { c.HTTPTimeout = -time.Second }, false},
		{"no storage", func(c *Client) { c.StoragePath = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{APIURL: DefaultAPIURL, StoragePath: "s.db", PollInterval: time.Second, HTTPTimeout: time.Second}
			tt.modify(c)
			err := c.Validate()
			if tt.ok != (err == nil) {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestServerFlags(t *testing.T) {
	t.Setenv("CHANCEN_DB", "env.sqlite3")
	t.Setenv("CHANCEN_ADDR", "")

	s := NewServer()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	s.RegisterFlags(fs)
	if err := fs.Parse([]string{"-addr", ":9000"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.DBPath != "env.sqlite3" || s.Addr != ":9000" || s.AdminEmail != DefaultAdminEmail {
		t.Errorf("unexpected config: %+v", s)
	}
}

func TestLoadEnv(t *testing.T) {
	const key = "CHANCEN_TEST_DOTENV"
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q", key, got)
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultServer = "https://list.tilman.ninja"
	DefaultList   = "Demo"
)

// Config says which list to talk to and how. It is resolved once per invocation and passed
// explicitly to everything that needs it.
type Config struct {
	Server   string `json:"server"`
	List     string `json:"list"`
	Proxy    string `json:"proxy,omitempty"`
	Username string `json:"username,omitempty"`
}

func Default() Config {
	return Config{Server: DefaultServer, List: DefaultList}
}

// ListURL is the API base for the configured list: {server}/api/{list}.
func (c Config) ListURL() string {
	return strings.TrimRight(c.Server, "/") + "/api/" + url.PathEscape(c.List)
}

// ProxyURL parses the configured proxy. A bare host:port is taken as http://host:port, the
// same way net/http treats HTTP_PROXY. It returns nil when no proxy is set.
func (c Config) ProxyURL() (*url.URL, error) {
	p := strings.TrimSpace(c.Proxy)
	if p == "" {
		return nil, nil
	}
	if !strings.Contains(p, "://") {
		p = "http://" + p
	}
	u, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", c.Proxy)
	}
	return u, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.Server); err != nil || c.Server == "" {
		problems = append(problems, fmt.Sprintf("invalid server %q", c.Server))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid server %q: scheme must be http or https", c.Server))
	} else if u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid server %q: missing host", c.Server))
	}

	if strings.TrimSpace(c.List) == "" {
		problems = append(problems, "list name is empty")
	}

	if c.Proxy != "" {
		if _, err := c.ProxyURL(); err != nil {
			problems = append(problems, fmt.Sprintf("invalid proxy %q", c.Proxy))
		}
	}

	if len(problems) > 0 {
		return &Error{Op: "validate", Err: errors.New(strings.Join(problems, "; "))}
	}
	return nil
}

// Overrides are values from a higher-precedence source; empty fields leave the base alone.
type Overrides struct {
	Server   string
	List     string
	Proxy    string
	Username string
}

func (c Config) With(o Overrides) Config {
	if v := strings.TrimSpace(o.Server); v != "" {
		c.Server = v
	}
	if v := strings.TrimSpace(o.List); v != "" {
		c.List = v
	}
	if v := strings.TrimSpace(o.Proxy); v != "" {
		c.Proxy = v
	}
	if v := strings.TrimSpace(o.Username); v != "" {
		c.Username = v
	}
	return c
}

// FromEnv reads SHOP_SERVER, SHOP_LIST, SHOP_PROXY and SHOP_USERNAME.
func FromEnv() Overrides {
	return Overrides{
		Server:   os.Getenv("SHOP_SERVER"),
		List:     os.Getenv("SHOP_LIST"),
		Proxy:    os.Getenv("SHOP_PROXY"),
		Username: os.Getenv("SHOP_USERNAME"),
	}
}

// LoadDotEnv loads KEY=value pairs from path into the environment without overriding
// variables that are already set. A missing file is only an error when required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &Error{Op: "load env file", Path: path, Err: err}
	}
	return nil
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.shop).
	if v := strings.TrimSpace(os.Getenv("SHOP_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &Error{Op: "resolve config dir", Err: err}
	}
	return filepath.Join(home, ".shop"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config file on top of the defaults. A missing file is not an error.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, &Error{Op: "read", Path: path, Err: err}
	}
	var fileCfg Config
	if err := json.Unmarshal(b, &fileCfg); err != nil {
		return Config{}, &Error{Op: "parse", Path: path, Err: err}
	}
	return cfg.With(Overrides(fileCfg)), nil
}

// Resolve merges defaults, the config file, the environment and flags, in increasing
// precedence, and validates the result.
func Resolve(flags Overrides) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.With(FromEnv()).With(flags)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// Save writes cfg to the config file and returns its path. The previous file is kept as
// config.json.bak.
func Save(cfg Config) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &Error{Op: "save", Path: path, Err: err}
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", &Error{Op: "save", Path: path, Err: err}
	}

	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	if err := atomicWriteFile(dir, "config.json.*.tmp", path, append(b, '\n'), 0o600); err != nil {
		return "", &Error{Op: "save", Path: path, Err: err}
	}
	return path, nil
}

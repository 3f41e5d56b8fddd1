package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CampusConfig names one campus group to scrape from the bulletin API.
type CampusConfig struct {
	// Group is the name stored in the sections table, e.g. "WSQ" or "BROOKLYN".
	Group string `yaml:"group" json:"group"`
	// Camp is the raw camp filter string sent to the bulletin API,
	// e.g. "WS@BRKLN,WS@INDUS".
	Camp string `yaml:"camp" json:"camp"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DBPath is the SQLite database file for the course catalog.
	DBPath string `yaml:"db_path" json:"db_path"`

	// Term is the bulletin term code (srcdb), e.g. "1264" for Spring 2026.
	Term string `yaml:"term" json:"term"`

	// Career filters the scrape, e.g. "UGRD".
	Career string `yaml:"career" json:"career"`

	// Campuses lists the campus groups to scrape and serve.
	Campuses []CampusConfig `yaml:"campuses" json:"campuses"`

	// DefaultYear is the year assumed for date windows given in "M/D" form
	// without an explicit year. Meeting dates coming back from the bulletin
	// details endpoint use that short form.
	DefaultYear int `yaml:"default_year" json:"default_year"`

	// RefreshCron is a cron-style schedule (e.g. "0 5 * * *") for periodic
	// catalog re-scrapes. Empty disables the scheduler.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DetailCacheTTLMinutes bounds the in-process course-details cache tier.
	// The SQLite tier underneath has no TTL, matching the original backend.
	DetailCacheTTLMinutes int `yaml:"detail_cache_ttl_minutes" json:"detail_cache_ttl_minutes"`

	// AllowedOrigins is the CORS allowlist for the browser frontend.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration targeting the
// Spring 2026 undergraduate catalog.
func DefaultConfig() *Config {
	return &Config{
		Listen:  "127.0.0.1:8000",
		DBPath:  "./data/nyu-courses.db",
		Term:    "1264",
		Career:  "UGRD",
		Campuses: []CampusConfig{
			{Group: "BROOKLYN", Camp: "WS@BRKLN,WS@INDUS"},
			{Group: "WSQ", Camp: "AD@GLOBAL-WS,AD@WS,SH@GLOBAL-WS,WS*,WS@2BRD,WS@JD,WS@MT,WS@OC,WS@PU,WS@WS,WS@WW"},
		},
		DefaultYear:           2026,
		RefreshCron:           "0 5 * * *",
		DetailCacheTTLMinutes: 60,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled config files still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.Term == "" {
		c.Term = def.Term
	}
	if c.Career == "" {
		c.Career = def.Career
	}
	if len(c.Campuses) == 0 {
		c.Campuses = def.Campuses
	}
	if c.DefaultYear <= 0 {
		c.DefaultYear = def.DefaultYear
	}
	if c.DetailCacheTTLMinutes <= 0 {
		c.DetailCacheTTLMinutes = def.DetailCacheTTLMinutes
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = def.AllowedOrigins
	}
}

// ApplyEnv lets a couple of deployment knobs override the file without
// editing it. LISTEN and DB_PATH are read from the environment (typically
// populated via a .env file).
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (creating
// the parent directory) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".courseapi-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

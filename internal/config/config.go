package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultSources = []string{"vw", "blackrock", "goldman", "cac40"}

// DBConfig holds the PostgreSQL connection parameters and the source shown
// at startup.
type DBConfig struct {
	Host          string
	Port          int
	Name          string
	User          string
	Password      string
	DefaultSource string
	// ConnectAttempts > 1 retries the initial connect with backoff.
	ConnectAttempts int
}

type Config struct {
	DB             DBConfig
	ConnectTimeout time.Duration

	// Fallback backends
	SQLitePath string
	DataDir    string

	// Sources
	DefaultSource string
	Sources       []string
	SourcesFile   string

	// Graph
	GraphKind      string
	ViewportWidth  int
	ViewportHeight int

	// Shell
	ShellMode       string
	APIPort         int
	CORSAllowOrigin string

	LogLevel string
	// LogFile receives logs in tui mode, where stderr belongs to the screen.
	LogFile string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	defaultSource := envStr("DEFAULT_SOURCE", "vw")

	cfg := &Config{
		// Database (development defaults)
		DB: DBConfig{
			Host:            os.Getenv("DB_HOST"),
			Port:            envInt("DB_PORT", 5432),
			Name:            envStr("DB_NAME", "boersendaten"),
			User:            envStr("DB_USER", "postgres"),
			Password:        envStr("DB_PASSWORD", "dp"),
			DefaultSource:   defaultSource,
			ConnectAttempts: envInt("DB_CONNECT_ATTEMPTS", 1),
		},
		ConnectTimeout: time.Duration(envInt("DB_CONNECT_TIMEOUT_SECONDS", 5)) * time.Second,

		SQLitePath: envStr("SQLITE_PATH", ""),
		DataDir:    envStr("DATA_DIR", "data"),

		DefaultSource: defaultSource,
		Sources:       envList("SOURCES", defaultSources),
		SourcesFile:   envStr("SOURCES_FILE", ""),

		GraphKind:      envStr("GRAPH_KIND", "line"),
		ViewportWidth:  envInt("VIEWPORT_WIDTH", 800),
		ViewportHeight: envInt("VIEWPORT_HEIGHT", 600),

		ShellMode:       envStr("SHELL_MODE", "http"),
		APIPort:         envInt("API_PORT", 3001),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		LogLevel: envStr("LOG_LEVEL", "info"),
		LogFile:  envStr("LOG_FILE", "quotegraph.log"),
	}

	if _, ok := os.LookupEnv("DB_HOST"); !ok {
		cfg.DB.Host = "localhost"
	}

	if cfg.SourcesFile != "" {
		names, err := LoadCatalog(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			cfg.Sources = names
		}
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DefaultSource == "" {
		errs = append(errs, "DEFAULT_SOURCE is required")
	}
	if len(c.Sources) == 0 {
		errs = append(errs, "at least one source is required (SOURCES or SOURCES_FILE)")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		errs = append(errs, "VIEWPORT_WIDTH and VIEWPORT_HEIGHT must be positive")
	}
	switch c.ShellMode {
	case "http", "tui", "summary":
	default:
		errs = append(errs, fmt.Sprintf("SHELL_MODE %q is invalid, expected http|tui|summary", c.ShellMode))
	}
	if c.DB.Host == "" && c.SQLitePath == "" && c.DataDir == "" {
		errs = append(errs, "no data backend configured (DB_HOST, SQLITE_PATH or DATA_DIR)")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Quote Graph Configuration ===")
	if c.DB.Host != "" {
		fmt.Printf("PostgreSQL: %s@%s:%d/%s\n", c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name)
	} else {
		fmt.Println("[WARN] DB_HOST is empty, PostgreSQL backend disabled")
	}
	fmt.Printf("SQLite: %s\n", boolLabel(c.SQLitePath != "", c.SQLitePath, "disabled"))
	fmt.Printf("Data dir: %s\n", c.DataDir)
	fmt.Println("--------------------------------------")
	fmt.Printf("Sources: %s (default %s)\n", strings.Join(c.Sources, ", "), c.DefaultSource)
	fmt.Printf("Graph: %s %dx%d\n", c.GraphKind, c.ViewportWidth, c.ViewportHeight)
	fmt.Printf("Shell: %s\n", c.ShellMode)
	fmt.Println("======================================")
}

// Validate checks that every connection parameter is present.
func (d DBConfig) Validate() error {
	var missing []string
	if d.Host == "" {
		missing = append(missing, "host")
	}
	if d.Port <= 0 {
		missing = append(missing, "port")
	}
	if d.Name == "" {
		missing = append(missing, "database name")
	}
	if d.User == "" {
		missing = append(missing, "user")
	}
	if d.Password == "" {
		missing = append(missing, "password")
	}
	if d.DefaultSource == "" {
		missing = append(missing, "default source")
	}
	if len(missing) > 0 {
		return fmt.Errorf("db config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// --- source catalog ---

type catalog struct {
	Sources []struct {
		Name  string `yaml:"name"`
		Label string `yaml:"label"`
	} `yaml:"sources"`
}

// LoadCatalog reads the list of selectable sources from a YAML file:
//
//	sources:
//	  - name: vw
//	    label: Volkswagen
func LoadCatalog(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	names := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		if n := strings.TrimSpace(s.Name); n != "" {
			names = append(names, n)
		}
	}
	return names, nil
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

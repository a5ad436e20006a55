package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	stateDirName = ".studytrack"
	envPrefix    = "STUDYTRACK_"
)

// DefaultCategories are the subject tags offered when none are configured.
var DefaultCategories = []string{"국어", "수학", "영어", "사회", "과학"}

type Config struct {
	DataDir          string
	StateDir         string
	Backend          string
	SQLitePath       string
	PostgresDSN      string
	User             string
	Categories       []string
	UTCOffsetHours   int
	RolloverInterval time.Duration
	StreakThreshold  time.Duration
	HeatmapDays      int
	LogLevel         string
	JournalEnabled   bool
}

// fileConfig mirrors config.yaml; nil fields keep the current value.
type fileConfig struct {
	Backend          *string  `yaml:"backend"`
	SQLitePath       *string  `yaml:"sqlite_path"`
	PostgresDSN      *string  `yaml:"postgres_dsn"`
	User             *string  `yaml:"user"`
	Categories       []string `yaml:"categories"`
	UTCOffsetHours   *int     `yaml:"utc_offset_hours"`
	RolloverInterval *string  `yaml:"rollover_interval"`
	StreakThreshold  *string  `yaml:"streak_threshold"`
	HeatmapDays      *int     `yaml:"heatmap_days"`
	LogLevel         *string  `yaml:"log_level"`
	Journal          *bool    `yaml:"journal"`
}

// New returns the defaults for dataDir without reading any file.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	stateDir := filepath.Join(dataDir, stateDirName)
	return Config{
		DataDir:          dataDir,
		StateDir:         stateDir,
		Backend:          BackendFile,
		SQLitePath:       filepath.Join(stateDir, "studytrack.db"),
		User:             "default",
		Categories:       append([]string(nil), DefaultCategories...),
		UTCOffsetHours:   9,
		RolloverInterval: time.Minute,
		StreakThreshold:  time.Minute,
		HeatmapDays:      270,
		LogLevel:         "info",
		JournalEnabled:   true,
	}, nil
}

// Load layers defaults, <data>/.studytrack/config.yaml, <data>/.studytrack/.env
// and STUDYTRACK_* process variables, later sources winning.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyFile(filepath.Join(cfg.StateDir, "config.yaml")); err != nil {
		return Config{}, err
	}
	env, err := readEnv(filepath.Join(cfg.StateDir, ".env"))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	setString(&c.Backend, fc.Backend)
	setString(&c.PostgresDSN, fc.PostgresDSN)
	setString(&c.User, fc.User)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.SQLitePath != nil {
		c.SQLitePath = c.resolve(*fc.SQLitePath)
	}
	if len(fc.Categories) > 0 {
		c.Categories = fc.Categories
	}
	if fc.UTCOffsetHours != nil {
		c.UTCOffsetHours = *fc.UTCOffsetHours
	}
	if fc.HeatmapDays != nil {
		c.HeatmapDays = *fc.HeatmapDays
	}
	if fc.Journal != nil {
		c.JournalEnabled = *fc.Journal
	}
	if fc.RolloverInterval != nil {
		d, err := time.ParseDuration(*fc.RolloverInterval)
		if err != nil {
			return fmt.Errorf("rollover_interval: %w", err)
		}
		c.RolloverInterval = d
	}
	if fc.StreakThreshold != nil {
		d, err := time.ParseDuration(*fc.StreakThreshold)
		if err != nil {
			return fmt.Errorf("streak_threshold: %w", err)
		}
		c.StreakThreshold = d
	}
	return nil
}

// readEnv returns the .env entries; process variables take precedence in lookup.
func readEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return values, nil
}

func (c *Config) applyEnv(file map[string]string) error {
	lookup := func(name string) (string, bool) {
		key := envPrefix + name
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}
	if v, ok := lookup("BACKEND"); ok {
		c.Backend = v
	}
	if v, ok := lookup("SQLITE_PATH"); ok {
		c.SQLitePath = c.resolve(v)
	}
	if v, ok := lookup("POSTGRES_DSN"); ok {
		c.PostgresDSN = v
	}
	if v, ok := lookup("USER"); ok {
		c.User = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("CATEGORIES"); ok {
		c.Categories = splitList(v)
	}
	if v, ok := lookup("UTC_OFFSET"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sUTC_OFFSET: %w", envPrefix, err)
		}
		c.UTCOffsetHours = n
	}
	if v, ok := lookup("ROLLOVER_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sROLLOVER_INTERVAL: %w", envPrefix, err)
		}
		c.RolloverInterval = d
	}
	if v, ok := lookup("STREAK_THRESHOLD"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSTREAK_THRESHOLD: %w", envPrefix, err)
		}
		c.StreakThreshold = d
	}
	if v, ok := lookup("JOURNAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sJOURNAL: %w", envPrefix, err)
		}
		c.JournalEnabled = b
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires a dsn")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user name is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if c.RolloverInterval < time.Second {
		return fmt.Errorf("rollover interval must be at least 1s")
	}
	if c.StreakThreshold < 0 {
		return fmt.Errorf("streak threshold must not be negative")
	}
	if c.HeatmapDays < 7 {
		return fmt.Errorf("heatmap days must be at least 7")
	}
	return nil
}

// BlobDir is where the file backend keeps its blobs.
func (c Config) BlobDir() string {
	return filepath.Join(c.StateDir, "data")
}

func (c Config) LogPath() string {
	return filepath.Join(c.StateDir, "studytrack.log")
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "psxscreener.toml"

// Duration decodes TOML strings like "700ms" or "25s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config represents the application configuration
type Config struct {
	Fetch     FetchConfig     `toml:"fetch"`
	Cache     CacheConfig     `toml:"cache"`
	PE        PEPolicy        `toml:"pe"`
	Data      DataConfig      `toml:"data"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Logging   LoggingConfig   `toml:"logging"`
}

type FetchConfig struct {
	BaseURL     string   `toml:"base_url" validate:"required,url"`
	UserAgent   string   `toml:"user_agent" validate:"required"`
	Timeout     Duration `toml:"timeout"`
	Delay       Duration `toml:"delay"`        // pause between symbols
	Mode        string   `toml:"mode" validate:"oneof=http browser"`
	PriceMarker string   `toml:"price_marker" validate:"required"`
}

// CacheConfig enables redis memoization of fetched pages when RedisAddr is set
type CacheConfig struct {
	RedisAddr string   `toml:"redis_addr"`
	Password  string   `toml:"password"`
	DB        int      `toml:"db" validate:"gte=0"`
	TTL       Duration `toml:"ttl"`
}

type DataConfig struct {
	Dir         string `toml:"dir" validate:"required"`
	SymbolsFile string `toml:"symbols_file" validate:"required"`
	CSVFile     string `toml:"csv_file" validate:"required"`
	HTMLFile    string `toml:"html_file" validate:"required"`
	Title       string `toml:"title"`
}

type DashboardConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

type LoggingConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			BaseURL:     "https://dps.psx.com.pk/company",
			UserAgent:   "Mozilla/5.0 (Educational Bot)",
			Timeout:     Duration{25 * time.Second},
			Delay:       Duration{700 * time.Millisecond},
			Mode:        "http",
			PriceMarker: "Rs.",
		},
		Cache: CacheConfig{
			TTL: Duration{6 * time.Hour},
		},
		PE: DefaultPEPolicy(),
		Data: DataConfig{
			Dir:         "data",
			SymbolsFile: "symbols.csv",
			CSVFile:     "stocks.csv",
			HTMLFile:    "stocks.html",
			Title:       "PSX Fair-Value Screener (PE-based)",
		},
		Dashboard: DashboardConfig{
			Addr: ":8501",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path, a .env
// file in the working directory and finally the process environment.
// A missing file at DefaultPath is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// A file that lists overrides fully defines their order.
		cfg.PE.Overrides = nil
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if cfg.PE.Overrides == nil {
			cfg.PE.Overrides = DefaultPEPolicy().Overrides
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Fetch.Timeout.Duration <= 0 {
		return fmt.Errorf("invalid config: fetch.timeout must be positive")
	}
	if c.Fetch.Delay.Duration < 0 {
		return fmt.Errorf("invalid config: fetch.delay cannot be negative")
	}
	return nil
}

func applyEnv(c *Config) error {
	setString(&c.Fetch.BaseURL, "PSX_BASE_URL")
	setString(&c.Fetch.UserAgent, "PSX_USER_AGENT")
	setString(&c.Fetch.Mode, "PSX_FETCH_MODE")
	setString(&c.Cache.RedisAddr, "PSX_REDIS_ADDR")
	setString(&c.Data.Dir, "PSX_DATA_DIR")
	setString(&c.Data.SymbolsFile, "PSX_SYMBOLS_FILE")
	setString(&c.Dashboard.Addr, "DASHBOARD_ADDR")
	setString(&c.Logging.Level, "LOG_LEVEL")
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	for key, target := range map[string]*Duration{
		"PSX_TIMEOUT":   &c.Fetch.Timeout,
		"PSX_DELAY":     &c.Fetch.Delay,
		"PSX_CACHE_TTL": &c.Cache.TTL,
	} {
		if v, ok := lookup(key); ok {
			if err := target.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	if v, ok := lookup("PSX_PE_DEFAULT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PSX_PE_DEFAULT: %w", err)
		}
		c.PE.DefaultMultiple = f
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

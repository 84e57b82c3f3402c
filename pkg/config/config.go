package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the complete application configuration.
// Configuration is loaded from a JSON file with environment overrides on top.
type Config struct {
	Destination DestinationConfig `json:"destination"`
	Feed        FeedConfig        `json:"feed"`
	Directory   DirectoryConfig   `json:"directory"`
	Policy      PolicyConfig      `json:"policy"`
	Display     DisplayConfig     `json:"display"`
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Logging     LoggingConfig     `json:"logging"`
}

// DestinationConfig identifies the single airport the board shows arrivals for.
type DestinationConfig struct {
	// Code is the ICAO code matched against flight_plan.arrival (e.g., "RKSI")
	Code string `json:"code"`

	// Latitude in decimal degrees (-90 to +90)
	Latitude float64 `json:"latitude"`

	// Longitude in decimal degrees (-180 to +180)
	Longitude float64 `json:"longitude"`

	// TimeZone is the IANA timezone the board clock runs in (e.g., "Asia/Seoul")
	TimeZone string `json:"timezone"`
}

// FeedConfig contains live telemetry feed settings.
type FeedConfig struct {
	// URL is the VATSIM v3 data endpoint
	URL string `json:"url"`

	// PollIntervalSeconds is how often the board recomputes from a fresh snapshot
	PollIntervalSeconds int `json:"poll_interval_seconds"`

	// RateLimitSeconds is the minimum time between feed requests
	// The public feed only refreshes every 15 seconds
	RateLimitSeconds float64 `json:"rate_limit_seconds"`

	// TimeoutSeconds bounds a single HTTP request
	TimeoutSeconds int `json:"timeout_seconds"`

	// MaxRetries is the number of retries after a failed fetch within one cycle
	MaxRetries int `json:"max_retries"`
}

// DirectoryConfig selects where airport names come from.
type DirectoryConfig struct {
	// Source is one of "file", "http" or "postgres"
	Source string `json:"source"`

	// Path is the JSON file used by the "file" source
	Path string `json:"path"`

	// URL is the JSON endpoint used by the "http" source
	URL string `json:"url,omitempty"`

	// RefreshIntervalSeconds is how often the directory is reloaded
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
}

// PolicyConfig selects the estimator/classifier pair and its thresholds.
type PolicyConfig struct {
	// Name is "groundspeed" (ratio estimator, LANDED state) or "descent"
	// (altitude-banded estimator, no LANDED state)
	Name string `json:"name"`

	// ProximityNM is the radius around the destination treated as "on the field"
	ProximityNM float64 `json:"proximity_nm"`

	// GroundAltitudeFt is the altitude below which an aircraft counts as on the ground
	GroundAltitudeFt float64 `json:"ground_altitude_ft"`

	// DelayThresholdMinutes is how far the live estimate may trail the schedule
	DelayThresholdMinutes int `json:"delay_threshold_minutes"`

	// MinGroundspeedKts gates the groundspeed-ratio estimator
	MinGroundspeedKts float64 `json:"min_groundspeed_kts"`

	// MaxDistanceNM gates the altitude-banded estimator
	MaxDistanceNM float64 `json:"max_distance_nm"`

	// StopSpeedKts is the generous upper bound for ARRIVED in the descent policy,
	// and the taxi speed below which its estimate is suppressed on the field
	StopSpeedKts float64 `json:"stop_speed_kts"`

	// SpeedBands maps altitude ceilings to assumed groundspeeds for the descent policy
	SpeedBands []SpeedBand `json:"speed_bands"`
}

// SpeedBand is one altitude band of the descent policy.
type SpeedBand struct {
	// CeilingFt is the exclusive upper altitude of this band (0 = unbounded)
	CeilingFt float64 `json:"ceiling_ft"`

	// SpeedKts is the assumed groundspeed within the band
	SpeedKts float64 `json:"speed_kts"`
}

// DisplayConfig contains board rendering settings.
type DisplayConfig struct {
	// UI is "tview", "tea" or "none"
	UI string `json:"ui"`

	// TickSeconds is the locale/status-text toggle period
	TickSeconds int `json:"tick_seconds"`

	// RowsPerPage is the row count of each of the two boards
	RowsPerPage int `json:"rows_per_page"`

	// HysteresisCycles is how many consecutive identical classifications are
	// required before a displayed status changes (0 = show raw status)
	HysteresisCycles int `json:"hysteresis_cycles"`
}

// ServerConfig contains HTTP API configuration.
type ServerConfig struct {
	// Enabled starts the JSON/websocket API alongside the board
	Enabled bool `json:"enabled"`

	// Host is the server bind address (default: "127.0.0.1")
	Host string `json:"host"`

	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`
}

// DatabaseConfig contains database connection settings for the postgres directory source.
type DatabaseConfig struct {
	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// LoggingConfig controls the structured log output.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `json:"level"`

	// Dir is where the rotated log file is written
	Dir string `json:"dir"`

	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `json:"max_size_mb"`

	// MaxBackups is the number of rotated files kept
	MaxBackups int `json:"max_backups"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyEnvironmentOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration for the Incheon (RKSI) arrivals board.
func DefaultConfig() *Config {
	return &Config{
		Destination: DestinationConfig{
			Code:      "RKSI",
			Latitude:  37.4625,
			Longitude: 126.439167,
			TimeZone:  "Asia/Seoul",
		},
		Feed: FeedConfig{
			URL:                 "https://data.vatsim.net/v3/vatsim-data.json",
			PollIntervalSeconds: 15,
			RateLimitSeconds:    15.0,
			TimeoutSeconds:      10,
			MaxRetries:          2,
		},
		Directory: DirectoryConfig{
			Source:                 "file",
			Path:                   "resources/airport.json",
			RefreshIntervalSeconds: 600,
		},
		Policy: PolicyConfig{
			Name:                  "groundspeed",
			ProximityNM:           2.5,
			GroundAltitudeFt:      300,
			DelayThresholdMinutes: 15,
			MinGroundspeedKts:     40,
			MaxDistanceNM:         2000,
			StopSpeedKts:          50,
			SpeedBands: []SpeedBand{
				{CeilingFt: 3000, SpeedKts: 160},
				{CeilingFt: 10000, SpeedKts: 250},
				{CeilingFt: 25000, SpeedKts: 380},
				{CeilingFt: 0, SpeedKts: 460},
			},
		},
		Display: DisplayConfig{
			UI:               "tview",
			TickSeconds:      3,
			RowsPerPage:      12,
			HysteresisCycles: 0,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    "8080",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			Database:     "arrivals",
			Username:     "arrivals",
			SSLMode:      "disable",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Dir:        "logs",
			MaxSizeMB:  16,
			MaxBackups: 3,
		},
	}
}

// Validate checks values that would otherwise surface as runtime failures.
func (c *Config) Validate() error {
	var errs []error
	if c.Destination.Code == "" {
		errs = append(errs, errors.New("destination.code is required"))
	}
	if c.Feed.PollIntervalSeconds <= 0 {
		errs = append(errs, errors.New("feed.poll_interval_seconds must be positive"))
	}
	if c.Directory.RefreshIntervalSeconds <= 0 {
		errs = append(errs, errors.New("directory.refresh_interval_seconds must be positive"))
	}
	if c.Display.TickSeconds <= 0 {
		errs = append(errs, errors.New("display.tick_seconds must be positive"))
	}
	if c.Display.RowsPerPage <= 0 {
		errs = append(errs, errors.New("display.rows_per_page must be positive"))
	}
	switch c.Directory.Source {
	case "file", "http", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown directory.source %q", c.Directory.Source))
	}
	switch c.Policy.Name {
	case "groundspeed", "descent":
	default:
		errs = append(errs, fmt.Errorf("unknown policy.name %q", c.Policy.Name))
	}
	switch c.Display.UI {
	case "tview", "tea", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown display.ui %q", c.Display.UI))
	}
	return errors.Join(errs...)
}

// Location returns the destination time zone.
// Falls back to a fixed UTC+9 zone when the IANA database is unavailable.
func (d DestinationConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(d.TimeZone); err == nil && d.TimeZone != "" {
		return loc
	}
	return time.FixedZone("UTC+9", 9*60*60)
}

// PollInterval returns the feed poll period.
func (f FeedConfig) PollInterval() time.Duration {
	return time.Duration(f.PollIntervalSeconds) * time.Second
}

// RefreshInterval returns the directory refresh period.
func (d DirectoryConfig) RefreshInterval() time.Duration {
	return time.Duration(d.RefreshIntervalSeconds) * time.Second
}

// Tick returns the display toggle period.
func (d DisplayConfig) Tick() time.Duration {
	return time.Duration(d.TickSeconds) * time.Second
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() {
	if code := os.Getenv("ARRIVALS_BOARD_DESTINATION"); code != "" {
		c.Destination.Code = code
	}
	if url := os.Getenv("ARRIVALS_BOARD_FEED_URL"); url != "" {
		c.Feed.URL = url
	}
	if port := os.Getenv("ARRIVALS_BOARD_PORT"); port != "" {
		c.Server.Port = port
	}
	if dbHost := os.Getenv("ARRIVALS_BOARD_DB_HOST"); dbHost != "" {
		c.Database.Host = dbHost
	}
	if dbPassword := os.Getenv("ARRIVALS_BOARD_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if level := os.Getenv("ARRIVALS_BOARD_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if cycles := os.Getenv("ARRIVALS_BOARD_HYSTERESIS"); cycles != "" {
		if n, err := strconv.Atoi(cycles); err == nil && n >= 0 {
			c.Display.HysteresisCycles = n
		}
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Server   ServerConfig
	Map      MapConfig
	Logging  LoggingConfig
}

// DataConfig describes where the station and trip snapshots come from
type DataConfig struct {
	Source       string // "http" or "postgres"
	StationsURL  string
	TripsURL     string
	Timezone     string
	FetchTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type ServerConfig struct {
	Port            int
	FrameCacheSize  int
	ShutdownTimeout time.Duration
}

// MapConfig is the initial map view handed to clients
type MapConfig struct {
	Style     string
	CenterLon float64
	CenterLat float64
	Zoom      float64
	MinZoom   float64
	MaxZoom   float64
	Width     int
	Height    int
	Overlays  []OverlayConfig
}

// OverlayConfig is a static bike-lane layer drawn under the stations
type OverlayConfig struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	URL     string  `json:"url"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

type LoggingConfig struct {
	Level      string
	FilePath   string
	DiscordURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			Source:       getEnv("SNAPSHOT_SOURCE", SourceHTTP),
			StationsURL:  getEnv("STATIONS_URL", "https://dsc106.com/labs/lab07/data/bluebikes-stations.json"),
			TripsURL:     getEnv("TRIPS_URL", "https://dsc106.com/labs/lab07/data/bluebikes-traffic-2024-03.csv"),
			Timezone:     getEnv("TRIPS_TIMEZONE", "America/New_York"),
			FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 2*time.Minute),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "bikeflow"),
		},
		Server: ServerConfig{
			Port:            getIntEnv("PORT", 8080),
			FrameCacheSize:  getIntEnv("FRAME_CACHE_SIZE", 256),
			ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Map: MapConfig{
			Style:     getEnv("MAP_STYLE", "mapbox://styles/mapbox/streets-v12"),
			CenterLon: getFloatEnv("MAP_CENTER_LON", -71.09415),
			CenterLat: getFloatEnv("MAP_CENTER_LAT", 42.36027),
			Zoom:      getFloatEnv("MAP_ZOOM", 12),
			MinZoom:   getFloatEnv("MAP_MIN_ZOOM", 5),
			MaxZoom:   getFloatEnv("MAP_MAX_ZOOM", 18),
			Width:     getIntEnv("MAP_WIDTH", 1024),
			Height:    getIntEnv("MAP_HEIGHT", 768),
			Overlays: []OverlayConfig{
				{
					ID:      "bike-lanes",
					Source:  "boston_route",
					URL:     getEnv("BOSTON_LANES_URL", "https://bostonopendata-boston.opendata.arcgis.com/datasets/boston::existing-bike-network-2022.geojson"),
					Color:   "#1E7D30",
					Width:   3,
					Opacity: 0.4,
				},
				{
					ID:      "bike-lanes-cambridge",
					Source:  "cambridge_route",
					URL:     getEnv("CAMBRIDGE_LANES_URL", "https://raw.githubusercontent.com/cambridgegis/cambridgegis_data/main/Recreation/Bike_Facilities/RECREATION_BikeFacilities.geojson"),
					Color:   "#0C61B0",
					Width:   3,
					Opacity: 0.4,
				},
			},
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE", "bikeflow.log"),
			DiscordURL: getEnv("DISCORD_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Data.Validate(); err != nil {
		return nil, fmt.Errorf("data config: %w", err)
	}

	return cfg, nil
}

// Location resolves the configured trip time zone
func (c *DataConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *DataConfig) Validate() error {
	switch c.Source {
	case SourceHTTP:
		if c.StationsURL == "" || c.TripsURL == "" {
			return fmt.Errorf("STATIONS_URL and TRIPS_URL are required for the http source")
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("unknown snapshot source %q", c.Source)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Host == "" || c.Port == "" || c.User == "" || c.DBName == "" {
		return fmt.Errorf("DB_HOST, DB_PORT, DB_USER and DB_NAME are required")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

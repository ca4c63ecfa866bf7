package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SNAPSHOT_SOURCE", "PORT", "MAP_ZOOM", "FETCH_TIMEOUT", "TRIPS_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Data.Source != SourceHTTP {
		t.Errorf("Expected http source, got %s", cfg.Data.Source)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Map.Zoom != 12 || cfg.Map.MinZoom != 5 || cfg.Map.MaxZoom != 18 {
		t.Errorf("Unexpected zoom defaults: %+v", cfg.Map)
	}
	if cfg.Map.CenterLon != -71.09415 || cfg.Map.CenterLat != 42.36027 {
		t.Errorf("Unexpected center: %f,%f", cfg.Map.CenterLon, cfg.Map.CenterLat)
	}
	if len(cfg.Map.Overlays) != 2 {
		t.Errorf("Expected 2 overlays, got %d", len(cfg.Map.Overlays))
	}
	if cfg.Data.FetchTimeout != 2*time.Minute {
		t.Errorf("Expected 2m fetch timeout, got %v", cfg.Data.FetchTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SNAPSHOT_SOURCE", "postgres")
	t.Setenv("PORT", "9090")
	t.Setenv("MAP_ZOOM", "14.5")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("FRAME_CACHE_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Data.Source != SourcePostgres {
		t.Errorf("Expected postgres source, got %s", cfg.Data.Source)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Map.Zoom != 14.5 {
		t.Errorf("Expected zoom 14.5, got %f", cfg.Map.Zoom)
	}
	if cfg.Data.FetchTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.Data.FetchTimeout)
	}
	if cfg.Server.FrameCacheSize != 256 {
		t.Errorf("Expected default cache size for invalid value, got %d", cfg.Server.FrameCacheSize)
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("SNAPSHOT_SOURCE", "ftp")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "unknown snapshot source") {
		t.Errorf("Expected unknown source error, got %v", err)
	}
}

func TestDatabaseConfig(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "bikes", Password: "secret", DBName: "bikeflow"}
	if err := db.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
	want := "host=db port=5432 user=bikes password=secret dbname=bikeflow sslmode=disable"
	if got := db.ConnectionString(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	db.Host = ""
	if err := db.Validate(); err == nil {
		t.Error("Expected error for missing host")
	}
}

func TestDataConfigLocation(t *testing.T) {
	c := DataConfig{Timezone: "UTC"}
	loc, err := c.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC, got %v (%v)", loc, err)
	}

	c.Timezone = "Mars/Olympus_Mons"
	if _, err := c.Location(); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env from the working directory, when present, and applies
// PLANBOARD_* variables on top of cfg.
func LoadEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg.Theme = getEnv("PLANBOARD_THEME", cfg.Theme)
	cfg.User = getEnv("PLANBOARD_USER", cfg.User)
	cfg.Server = getEnv("PLANBOARD_SERVER", cfg.Server)
	cfg.Database = getEnv("PLANBOARD_DATABASE", cfg.Database)
	cfg.ExportDir = getEnv("PLANBOARD_EXPORT_DIR", cfg.ExportDir)
	cfg.Jaeger = getEnv("PLANBOARD_JAEGER_ENDPOINT", cfg.Jaeger)
	cfg.Canvas.StrokeColor = getEnv("PLANBOARD_STROKE_COLOR", cfg.Canvas.StrokeColor)

	floats := []struct {
		key string
		dst *float64
	}{
		{"PLANBOARD_ZOOM_STEP", &cfg.Canvas.ZoomStep},
		{"PLANBOARD_ZOOM_MIN", &cfg.Canvas.ZoomMin},
		{"PLANBOARD_ZOOM_MAX", &cfg.Canvas.ZoomMax},
		{"PLANBOARD_STROKE_WIDTH", &cfg.Canvas.StrokeWidth},
		{"PLANBOARD_FONT_SIZE", &cfg.Canvas.FontSize},
	}
	for _, f := range floats {
		v, err := getEnvFloat(f.key, *f.dst)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

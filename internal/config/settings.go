package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Tariff table backends.
const (
	TariffSourceDB    = "db"
	TariffSourceFiles = "files"
)

// Database holds the postgres connection settings.
type Database struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	TimeZone string `validate:"required"`
}

// DSN renders the settings as a postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// Settings is the process configuration read from the environment.
type Settings struct {
	Database Database

	HTTPAddr      string `validate:"required"`
	TariffDataDir string `validate:"required_if=TariffSource files"`
	TariffSource  string `validate:"oneof=db files"`
	AllowDegraded bool

	OverpassURL     string        `validate:"required,url"`
	GeocoderTimeout time.Duration `validate:"gt=0"`
	GeocoderPause   time.Duration `validate:"gte=0"`
	WindingFactor   float64       `validate:"gt=1"`
	CorridorsFile   string        `validate:"omitempty,file"`

	JWTSecret     string
	AdminEmail    string `validate:"omitempty,email"`
	AdminPassword string `validate:"required_with=AdminEmail"`

	LogFile  string
	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("config: no .env file found, relying on env vars")
	}

	var errs []string
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, def))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return d
	}
	float := func(key, def string) float64 {
		f, err := strconv.ParseFloat(getEnv(key, def), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return f
	}
	boolean := func(key string) bool {
		raw := getEnv(key, "false")
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
		return b
	}

	s := Settings{
		Database: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "rail_distance"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		TariffDataDir:   getEnv("TARIFF_DATA_DIR", ""),
		TariffSource:    strings.ToLower(getEnv("TARIFF_SOURCE", TariffSourceDB)),
		AllowDegraded:   boolean("ALLOW_DEGRADED"),
		OverpassURL:     getEnv("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		GeocoderTimeout: duration("GEOCODER_TIMEOUT", "90s"),
		GeocoderPause:   duration("GEOCODER_PAUSE", "1s"),
		WindingFactor:   float("WINDING_FACTOR", "1.25"),
		CorridorsFile:   getEnv("CORRIDORS_FILE", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AdminEmail:      getEnv("ADMIN_EMAIL", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		LogFile:         getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
	if len(errs) > 0 {
		return s, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the field constraints.
func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

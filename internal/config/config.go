package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the places service.
// It includes the environment, server port, where the catalog and the facets
// table come from, the routing provider, ranking parameters and the database
// configuration used by the postgres catalog source.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the HTTP server.
// - CatalogSource: Where to read the catalog from (file, url, postgres).
// - CatalogPath: The catalog file path or URL.
// - FacetsPath: Optional facets table file; the built-in table is used when empty.
// - Routing: Road distance provider settings.
// - RefineDelay: The minimum delay between two routing requests.
// - TopN: The default number of nearest places returned.
// - SessionTTL: How long an idle session is kept.
// - PreserveOrder: Skip re-sorting the nearest places by road distance.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env           string         `yaml:"env"`            // Env is the current environment: local, development, production.
	Port          int            `yaml:"port"`           // Port is the HTTP server port.
	CatalogSource string         `yaml:"catalog.source"` // CatalogSource is one of file, url, postgres.
	CatalogPath   string         `yaml:"catalog.path"`   // CatalogPath is a file path or a URL.
	FacetsPath    string         `yaml:"facets.path"`    // FacetsPath overrides the built-in facets table.
	Routing       RoutingConfig  `yaml:"routing"`        // Routing holds the road distance provider settings.
	RefineDelay   time.Duration  `yaml:"refine_delay"`   // RefineDelay paces requests to the routing provider.
	TopN          int            `yaml:"top_n"`          // TopN is the default size of the nearest places list.
	SessionTTL    time.Duration  `yaml:"session_ttl"`    // SessionTTL is the idle lifetime of a session.
	PreserveOrder bool           `yaml:"preserve_order"` // PreserveOrder keeps the approximate order after refinement.
	Database      PostgresConfig `yaml:"postgres"`       // Database holds the postgres database configuration
}

// RoutingConfig selects and configures the road distance provider.
type RoutingConfig struct {
	Provider string        `yaml:"provider"` // Provider is osrm or google.
	BaseURL  string        `yaml:"url"`      // BaseURL overrides the public OSRM server.
	APIKey   string        `yaml:"api_key"`  // APIKey is required for Google.
	Timeout  time.Duration `yaml:"timeout"`  // Timeout bounds a single routing request.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from the environment (and a .env file when present).
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("WAYFARER_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for server from configuration")
	}

	timeout, err := time.ParseDuration(setDefaultEnv("WAYFARER_ROUTING_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse routing timeout from configuration")
	}

	refineDelay, err := time.ParseDuration(setDefaultEnv("WAYFARER_REFINE_DELAY", "500ms"))
	if err != nil {
		panic("failed to parse refine delay from configuration")
	}

	topN, err := strconv.Atoi(setDefaultEnv("WAYFARER_TOP_N", "5"))
	if err != nil || topN <= 0 {
		panic("failed to parse top n from configuration, must be a positive integer")
	}

	sessionTTL, err := time.ParseDuration(setDefaultEnv("WAYFARER_SESSION_TTL", "30m"))
	if err != nil {
		panic("failed to parse session ttl from configuration")
	}

	preserveOrder, err := strconv.ParseBool(setDefaultEnv("WAYFARER_PRESERVE_APPROX_ORDER", "false"))
	if err != nil {
		panic("failed to parse preserve order flag from configuration, must be a boolean")
	}

	return &Config{
		Env:           setDefaultEnv("WAYFARER_ENV", "production"),
		Port:          port,
		CatalogSource: setDefaultEnv("WAYFARER_CATALOG_SOURCE", "file"),
		CatalogPath:   setDefaultEnv("WAYFARER_CATALOG_PATH", "data.json"),
		FacetsPath:    os.Getenv("WAYFARER_FACETS_PATH"),
		Routing: RoutingConfig{
			Provider: setDefaultEnv("WAYFARER_ROUTING_PROVIDER", "osrm"),
			BaseURL:  os.Getenv("WAYFARER_ROUTING_URL"),
			APIKey:   os.Getenv("WAYFARER_ROUTING_KEY"),
			Timeout:  timeout,
		},
		RefineDelay:   refineDelay,
		TopN:          topN,
		SessionTTL:    sessionTTL,
		PreserveOrder: preserveOrder,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations, time.Time for festival instants.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign session JWTs
	AccessTTLMin int    // session token time-to-live in minutes
	APIKeyHash   string // bcrypt hash of the reception-desk API key

	// LINE Messaging API credentials. Both may be empty, in which
	// case the webhook and login endpoints refuse requests.
	LineChannelSecret string
	LineChannelToken  string

	// EventOpening is the festival opening instant used as the wait
	// estimate baseline. Optional; a zero value lets the booking
	// layer fall back to its default.
	EventOpening time.Time
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		APIKeyHash:        must("API_KEY_HASH"),
		LineChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		LineChannelToken:  os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		EventOpening:      optTime("EVENT_OPENING"),
	}
}

// DBConfig is the subset of Config needed to reach the database. The
// seeder loads only this so it can run without the server's secrets.
type DBConfig struct {
	User string
	Pass string
	Host string
	Port string
	Name string
}

// LoadDB reads only the database environment variables.
func LoadDB() DBConfig {
	return DBConfig{
		User: must("DB_USER"),
		Pass: os.Getenv("DB_PASS"),
		Host: must("DB_HOST"),
		Port: must("DB_PORT"),
		Name: must("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optTime parses an optional RFC3339 env var. Unset yields the zero
// time; a set but malformed value is a fatal configuration error.
func optTime(key string) time.Time {
	s := os.Getenv(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Fatalf("invalid RFC3339 time for %s: %q", key, s)
	}
	return t.UTC()
}

package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses the presence sweep durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for token
// lifetimes, durations for the presence sweeper.
type Config struct {
    Env            string        // application environment (e.g. "dev", "prod")
    Port           string        // HTTP port to listen on
    DBUser         string        // database username
    DBPass         string        // database password (optional)
    DBHost         string        // database host address
    DBPort         string        // database port number
    DBName         string        // database name
    AccessSecret   string        // secret used to sign access tokens
    RefreshSecret  string        // secret used to sign refresh tokens (must differ from AccessSecret)
    AccessTTLMin   int           // access token time‑to‑live in minutes
    RefreshTTLDays int           // refresh token time‑to‑live in days
    BcryptCost     int           // bcrypt cost for password hashing
    SweepInterval  time.Duration // how often the presence sweeper runs
    StaleAfter     time.Duration // how long without a request before a user goes inactive
    AMQPURL        string        // RabbitMQ URL for outbound notifications (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The two token
// secrets are deliberately separate variables so an access token can never
// be replayed as a refresh token.
func Load() Config {
    cfg := Config{
        Env:            getenvDefault("APP_ENV", "dev"),
        Port:           getenvDefault("APP_PORT", "8000"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        AccessSecret:   must("ACCESS_TOKEN_SECRET"),
        RefreshSecret:  must("REFRESH_TOKEN_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_EXPIRE_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        SweepInterval:  envDuration("PRESENCE_SWEEP_INTERVAL", 15*time.Minute),
        StaleAfter:     envDuration("PRESENCE_STALE_AFTER", 5*time.Minute),
        AMQPURL:        os.Getenv("RABBITMQ_URL"),
    }
    if cfg.AccessSecret == cfg.RefreshSecret {
        log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
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

// getenvDefault returns the value of the variable or the fallback when unset.
func getenvDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// envDuration parses an optional duration variable, falling back to def when
// the variable is unset or malformed.
func envDuration(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 {
        log.Printf("ignoring invalid duration for %s: %q", key, s)
        return def
    }
    return d
}

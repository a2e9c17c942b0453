// Package config loads application configuration from environment
// variables.  An optional YAML file can supply the same keys; a variable
// that is already set in the environment always wins over the file.
package config

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "gopkg.in/yaml.v3"

    "github.com/iliyamo/cinema-admin/internal/database"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env            string           // APP_ENV (e.g. "dev", "prod")
    Port           string           // APP_PORT, HTTP port to listen on
    DB             database.Options // DB_DRIVER, DB_USER, DB_PASS, DB_HOST, DB_PORT, DB_NAME, DB_SSLMODE
    JWTSecret      string           // JWT_SECRET, signs session tokens
    SessionTTL     time.Duration    // SESSION_TTL, lifetime of a login (default 12h)
    BcryptCost     int              // BCRYPT_COST (default 12)
    Location       *time.Location   // APP_TIMEZONE, defines "today" (default UTC)
    SalesTodayOnly bool             // SALES_TODAY_ONLY, restrict sales to today's showtimes (default true)
    LogLevel       string           // LOG_LEVEL: debug, info, warn, error, off (default info)
    SecureCookies  bool             // COOKIE_SECURE, mark the session cookie Secure (default true outside dev)
}

// Load reads configuration values from environment variables.  Every
// missing or malformed required variable is reported in the returned
// error, not just the first one.
func Load() (Config, error) {
    var errs []error
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || strings.TrimSpace(v) == "" {
            errs = append(errs, fmt.Errorf("missing required env var: %s", key))
        }
        return v
    }

    env := envStr("APP_ENV", "dev")
    cfg := Config{
        Env:  env,
        Port: envStr("APP_PORT", "8080"),
        DB: database.Options{
            Driver:  envStr("DB_DRIVER", database.DriverMySQL),
            User:    must("DB_USER"),
            Pass:    os.Getenv("DB_PASS"),
            Host:    must("DB_HOST"),
            Port:    must("DB_PORT"),
            Name:    must("DB_NAME"),
            SSLMode: envStr("DB_SSLMODE", "disable"),
        },
        JWTSecret:      must("JWT_SECRET"),
        SessionTTL:     envDur("SESSION_TTL", 12*time.Hour),
        BcryptCost:     envInt("BCRYPT_COST", 12),
        SalesTodayOnly: envBool("SALES_TODAY_ONLY", true),
        LogLevel:       strings.ToLower(envStr("LOG_LEVEL", "info")),
        SecureCookies:  envBool("COOKIE_SECURE", env != "dev"),
    }

    switch cfg.DB.Driver {
    case database.DriverMySQL, database.DriverPostgres:
    default:
        errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", database.DriverMySQL, database.DriverPostgres, cfg.DB.Driver))
    }
    if cfg.SessionTTL <= 0 {
        errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL))
    }

    loc, err := time.LoadLocation(envStr("APP_TIMEZONE", "UTC"))
    if err != nil {
        errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
        loc = time.UTC
    }
    cfg.Location = loc

    return cfg, errors.Join(errs...)
}

// LoadFile reads a flat YAML mapping of environment variable names to
// values, e.g.
//
//  APP_PORT: 8080
//  DB_DRIVER: postgres
//
// and exports every key that is not already set in the environment.
func LoadFile(path string) error {
    raw, err := os.ReadFile(path)
    if err != nil {
        return fmt.Errorf("read config %s: %w", path, err)
    }
    var values map[string]any
    if err := yaml.Unmarshal(raw, &values); err != nil {
        return fmt.Errorf("parse config %s: %w", path, err)
    }
    for k, v := range values {
        if _, set := os.LookupEnv(k); set {
            continue
        }
        if v == nil {
            continue
        }
        if err := os.Setenv(k, fmt.Sprint(v)); err != nil {
            return err
        }
    }
    return nil
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}

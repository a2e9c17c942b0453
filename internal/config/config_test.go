package config

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func setRequired(t *testing.T) {
    t.Helper()
    t.Setenv("DB_USER", "cinema")
    t.Setenv("DB_HOST", "localhost")
    t.Setenv("DB_PORT", "3306")
    t.Setenv("DB_NAME", "cinema")
    t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
    setRequired(t)
    cfg, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.DB.Driver != "mysql" || cfg.Port != "8080" {
        t.Fatalf("defaults: driver=%q port=%q", cfg.DB.Driver, cfg.Port)
    }
    if !cfg.SalesTodayOnly {
        t.Fatal("SalesTodayOnly should default to true")
    }
    if cfg.SessionTTL != 12*time.Hour {
        t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
    }
    if cfg.Location != time.UTC {
        t.Fatalf("Location = %v", cfg.Location)
    }
    if cfg.SecureCookies {
        t.Fatal("dev defaults to insecure cookies")
    }
}

func TestLoadReportsEveryProblem(t *testing.T) {
    for _, k := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME", "JWT_SECRET"} {
        t.Setenv(k, "")
    }
    t.Setenv("DB_DRIVER", "oracle")
    t.Setenv("APP_TIMEZONE", "Mars/Olympus")

    _, err := Load()
    if err == nil {
        t.Fatal("expected error")
    }
    for _, want := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME", "JWT_SECRET", "DB_DRIVER", "APP_TIMEZONE"} {
        if !strings.Contains(err.Error(), want) {
            t.Errorf("error does not mention %s: %v", want, err)
        }
    }
}

func TestLoadFileDoesNotOverrideEnv(t *testing.T) {
    setRequired(t)
    t.Setenv("APP_PORT", "9000")
    t.Setenv("APP_TIMEZONE", "")
    t.Setenv("SALES_TODAY_ONLY", "")

    path := filepath.Join(t.TempDir(), "cinema.yaml")
    body := "APP_PORT: 7000\nAPP_TIMEZONE: Europe/Berlin\nSALES_TODAY_ONLY: false\n"
    if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
        t.Fatal(err)
    }
    // Empty values count as set for LoadFile, so unset them first.
    os.Unsetenv("APP_TIMEZONE")
    os.Unsetenv("SALES_TODAY_ONLY")

    if err := LoadFile(path); err != nil {
        t.Fatalf("LoadFile: %v", err)
    }
    cfg, err := Load()
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.Port != "9000" {
        t.Fatalf("Port = %q, env must win over the file", cfg.Port)
    }
    if cfg.Location.String() != "Europe/Berlin" {
        t.Fatalf("Location = %v", cfg.Location)
    }
    if cfg.SalesTodayOnly {
        t.Fatal("SalesTodayOnly from file ignored")
    }
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    cfg := LoadRateLimitConfig()
    if cfg.Capacity != 1 {
        t.Fatalf("Capacity = %d", cfg.Capacity)
    }
    if cfg.TTL != 10*time.Second {
        t.Fatalf("TTL = %s, want five refill intervals", cfg.TTL)
    }
}

func TestLoadRedisConfigHostPort(t *testing.T) {
    t.Setenv("REDIS_ADDR", "ignored:1")
    t.Setenv("REDIS_HOST", "cache")
    t.Setenv("REDIS_PORT", "6380")
    if got := LoadRedisConfig().Addr; got != "cache:6380" {
        t.Fatalf("Addr = %q", got)
    }
    if NewRedisClient(RedisConfig{}) != nil {
        t.Fatal("empty address must not produce a client")
    }
}

func TestLoadCacheConfigMethods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    cfg := LoadCacheConfig()
    if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
        t.Fatalf("Methods = %v", cfg.Methods)
    }
}

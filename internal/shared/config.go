package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	StoreBackend   string // memory | mysql | hosted
	MySQLDSN       string
	MigrateOnStart bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	HostedURL      string
	HostedKey      string
	HostedRPS      int
	SyncWorkers    int
	CacheTTL       time.Duration
	SessionTTL     time.Duration
	LoginURL       string
	Currency       string
}

// Load reads the process environment, after merging a .env file when one is
// present in the working directory.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric value")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		StoreBackend:   strings.ToLower(env("STORE_BACKEND", "memory")),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hostels?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		MigrateOnStart: envBool("MIGRATE_ON_START", true),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		HostedURL:      env("HOSTED_DB_URL", ""),
		HostedKey:      env("HOSTED_DB_KEY", ""),
		HostedRPS:      atoi("HOSTED_DB_RPS", 5),
		SyncWorkers:    atoi("SYNC_WORKERS", 8),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		LoginURL:       env("LOGIN_URL", "/login"),
		Currency:       env("CURRENCY", "UGX"),
	}
	if c.StoreBackend == "hosted" && c.HostedKey == "" {
		log.Warn().Msg("HOSTED_DB_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

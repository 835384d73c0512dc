package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Cache modes for catalog pages fetched by the discovery gateway.
const (
	CacheOff    = "off"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DiscoveryConfig holds everything the discovery API and CLI need.
type DiscoveryConfig struct {
	Addr           string
	CatalogBaseURL string
	PageLimit      int
	LeadDistance   float64
	FetchTimeout   time.Duration
	CacheMode      string
	CacheTTL       time.Duration
	GatewayRPS     float64
	GatewayBurst   int
	SessionIdleTTL time.Duration
	AllowOrigins   []string
}

func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Addr:           ":8081",
		CatalogBaseURL: "http://localhost:8081/api/v1",
		PageLimit:      18,
		LeadDistance:   200,
		FetchTimeout:   10 * time.Second,
		CacheMode:      CacheMemory,
		CacheTTL:       30 * time.Second,
		GatewayRPS:     20,
		GatewayBurst:   10,
		SessionIdleTTL: 15 * time.Minute,
		AllowOrigins:   []string{"http://localhost:3000", "http://localhost:3001"},
	}
}

// LoadDiscoveryConfig reads DiscoveryConfig from the environment. Values
// that do not parse keep their default.
func LoadDiscoveryConfig() DiscoveryConfig {
	cfg := DefaultDiscoveryConfig()

	cfg.Addr = getEnv("APP_ADDR", cfg.Addr)
	cfg.CatalogBaseURL = strings.TrimRight(getEnv("CATALOG_BASE_URL", cfg.CatalogBaseURL), "/")
	cfg.PageLimit = getEnvInt("DISCOVERY_PAGE_LIMIT", cfg.PageLimit)
	cfg.LeadDistance = getEnvFloat("DISCOVERY_LEAD_DISTANCE", cfg.LeadDistance)
	cfg.FetchTimeout = getEnvDuration("DISCOVERY_FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.CacheTTL = getEnvDuration("DISCOVERY_CACHE_TTL", cfg.CacheTTL)
	cfg.GatewayRPS = getEnvFloat("DISCOVERY_GATEWAY_RPS", cfg.GatewayRPS)
	cfg.GatewayBurst = getEnvInt("DISCOVERY_GATEWAY_BURST", cfg.GatewayBurst)
	cfg.SessionIdleTTL = getEnvDuration("DISCOVERY_SESSION_IDLE_TTL", cfg.SessionIdleTTL)

	switch mode := strings.ToLower(getEnv("DISCOVERY_CACHE", cfg.CacheMode)); mode {
	case CacheOff, CacheMemory, CacheRedis:
		cfg.CacheMode = mode
	default:
		Logger.Warn("unknown DISCOVERY_CACHE, keeping default",
			zap.String("value", mode), zap.String("default", cfg.CacheMode))
	}

	if origins := getEnv("CORS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.AllowOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		Logger.Warn("invalid integer setting, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		Logger.Warn("invalid number setting, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		Logger.Warn("invalid duration setting, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

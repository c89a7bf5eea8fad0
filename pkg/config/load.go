package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally seeded from a
// .env file, and applies defaults for the per-action rate-limit rules.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using system environment")
		}
	} else {
		for _, path := range envFilePath {
			if err := godotenv.Load(path); err != nil {
				logger.Warn("could not load environment file", "path", path, "error", err)
				continue
			}
			break
		}
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	applyRateLimitDefaults(cfg.RateLimit)

	logger.Info("config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"redis", maskValue(cfg.Redis.URL),
		"stats_cache_ttl", cfg.StatsCache.TTL,
		"webhook_timeout", cfg.Webhook.Timeout,
	)
	return &cfg, nil
}

// Authentication attempts fail closed; write endpoints fail open. Both are
// explicit so a counter-store outage is never a silent bypass.
func applyRateLimitDefaults(rl *RateLimit) {
	if rl == nil {
		return
	}
	if rl.Auth.Max == 0 {
		rl.Auth = RateLimitRule{Max: 5, Window: 15 * time.Minute, Policy: "fail-closed"}
	}
	if rl.Write.Max == 0 {
		rl.Write = RateLimitRule{Max: 30, Window: time.Minute, Policy: "fail-open"}
	}
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}

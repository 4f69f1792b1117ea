package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig collects everything the server needs at boot time.
type AppConfig struct {
	ListenAddr           string
	Port                 string
	DatabasePath         string
	SessionSecret        string
	GinMode              string
	SiteBaseURL          string
	NotifyTimeout        time.Duration
	StatsInterval        time.Duration
	StatsRetentionDays   int
	PermissionEntityRefs []string
}

// Load reads the application config from environment variables, falling back
// to safe defaults for anything missing.
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "qboard.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "qboard-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:8080"
	}

	notifyTimeout := durationEnv("NOTIFY_TIMEOUT", 5*time.Second)
	statsInterval := durationEnv("STATS_INTERVAL", 24*time.Hour)

	retentionDays := 30
	if raw := strings.TrimSpace(os.Getenv("STATS_RETENTION_DAYS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retentionDays = parsed
		}
	}

	// Entity refs whose members may edit entity-associated posts, comma separated.
	var entityRefs []string
	if raw := strings.TrimSpace(os.Getenv("PERMISSION_ENTITY_REFS")); raw != "" {
		for _, ref := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(ref); trimmed != "" {
				entityRefs = append(entityRefs, trimmed)
			}
		}
	}

	return AppConfig{
		ListenAddr:           listenAddr,
		Port:                 port,
		DatabasePath:         databasePath,
		SessionSecret:        sessionSecret,
		GinMode:              ginMode,
		SiteBaseURL:          siteBaseURL,
		NotifyTimeout:        notifyTimeout,
		StatsInterval:        statsInterval,
		StatsRetentionDays:   retentionDays,
		PermissionEntityRefs: entityRefs,
	}
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the resolver.
// All values are read from the environment; a .env file is honored when present.
type Config struct {
	// ApiUrls is the list of equivalent public API mirrors used as the
	// fallback metadata/download backend. Rotated round-robin.
	ApiUrls []string
	ApiKey  string

	DownloadsDir string
	CacheDir     string

	// Proxy is passed to yt-dlp when no cookie file is configured.
	Proxy       string
	CookiesPath []string

	// DefaultService decides where bare text queries go ("youtube" or "api").
	DefaultService string

	SongDurationLimit int   // seconds, 0 = unlimited
	MaxFileSize       int64 // bytes, 0 = unlimited

	MongoUri string

	// MinRequestDelay is the minimum gap between outbound metadata requests.
	// A random jitter of up to MaxRequestJitter is added on top.
	MinRequestDelay  time.Duration
	MaxRequestJitter time.Duration

	// MirrorRetries is the per-mirror attempt count before rotating.
	MirrorRetries    int
	MirrorRetryDelay time.Duration
}

// Conf is the global configuration, populated by LoadConfig.
var Conf Config

// LoadConfig reads the configuration from the environment into Conf.
func LoadConfig() error {
	_ = godotenv.Load()

	Conf = Config{
		ApiUrls:           getEnvList("API_URL"),
		ApiKey:            os.Getenv("API_KEY"),
		DownloadsDir:      getEnv("DOWNLOADS_DIR", "downloads"),
		CacheDir:          getEnv("CACHE_DIR", "cache"),
		Proxy:             os.Getenv("PROXY"),
		CookiesPath:       getEnvList("COOKIES_PATH"),
		DefaultService:    getEnv("DEFAULT_SERVICE", "youtube"),
		SongDurationLimit: getEnvInt("SONG_DURATION_LIMIT", 0),
		MaxFileSize:       int64(getEnvInt("MAX_FILE_SIZE", 0)),
		MongoUri:          os.Getenv("MONGO_URI"),
		MinRequestDelay:   getEnvDuration("MIN_REQUEST_DELAY", 500*time.Millisecond),
		MaxRequestJitter:  getEnvDuration("MAX_REQUEST_JITTER", 700*time.Millisecond),
		MirrorRetries:     getEnvInt("MIRROR_RETRIES", 2),
		MirrorRetryDelay:  getEnvDuration("MIRROR_RETRY_DELAY", time.Second),
	}

	for _, dir := range []string{Conf.DownloadsDir, Conf.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// getEnvList parses a comma-separated env value, trimming blanks and
// trailing slashes so mirror URLs compare cleanly.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts either a Go duration string ("750ms") or a bare
// number of milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

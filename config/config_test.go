/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOWNLOADS_DIR", filepath.Join(dir, "downloads"))
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))

	require.NoError(t, LoadConfig())

	assert.Equal(t, "youtube", Conf.DefaultService)
	assert.Equal(t, 500*time.Millisecond, Conf.MinRequestDelay)
	assert.Equal(t, 2, Conf.MirrorRetries)
	assert.Empty(t, Conf.ApiUrls)
	assert.DirExists(t, Conf.DownloadsDir)
	assert.DirExists(t, Conf.CacheDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOWNLOADS_DIR", filepath.Join(dir, "dl"))
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("API_URL", "https://a.example/, https://b.example,")
	t.Setenv("API_KEY", "secret")
	t.Setenv("MIN_REQUEST_DELAY", "250")
	t.Setenv("MIRROR_RETRY_DELAY", "1500ms")
	t.Setenv("SONG_DURATION_LIMIT", "600")

	require.NoError(t, LoadConfig())

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, Conf.ApiUrls)
	assert.Equal(t, "secret", Conf.ApiKey)
	assert.Equal(t, 250*time.Millisecond, Conf.MinRequestDelay)
	assert.Equal(t, 1500*time.Millisecond, Conf.MirrorRetryDelay)
	assert.Equal(t, 600, Conf.SongDurationLimit)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SOME_DUR", "2s")
	assert.Equal(t, 2*time.Second, getEnvDuration("SOME_DUR", time.Millisecond))

	t.Setenv("SOME_DUR", "75")
	assert.Equal(t, 75*time.Millisecond, getEnvDuration("SOME_DUR", time.Millisecond))

	t.Setenv("SOME_DUR", "garbage")
	assert.Equal(t, time.Millisecond, getEnvDuration("SOME_DUR", time.Millisecond))
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tgresolve/config"
)

func TestWrapperPicksYouTube(t *testing.T) {
	w := NewDownloaderWrapper("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.IsType(t, &YouTubeData{}, w.Service)
	assert.True(t, w.IsValid())
}

func TestWrapperPicksApiForPlatformURLs(t *testing.T) {
	setMirrors(t, "https://mirror.example")

	w := NewDownloaderWrapper("https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT")
	assert.IsType(t, &ApiData{}, w.Service)
	assert.True(t, w.IsValid())
}

func TestWrapperPicksDirectLink(t *testing.T) {
	w := NewDownloaderWrapper("https://cdn.example/song.mp3")
	assert.IsType(t, &DirectLink{}, w.Service)
	assert.True(t, w.IsValid())
}

func TestWrapperDefaultsToYouTubeSearch(t *testing.T) {
	w := NewDownloaderWrapper("never gonna give you up")
	assert.IsType(t, &YouTubeData{}, w.Service)
	// Bare text is not a valid YouTube URL, but Search still works on it.
	assert.False(t, w.IsValid())
}

func TestWrapperDefaultServiceApi(t *testing.T) {
	setMirrors(t, "https://mirror.example")

	old := config.Conf.DefaultService
	config.Conf.DefaultService = "api"
	t.Cleanup(func() { config.Conf.DefaultService = old })

	w := NewDownloaderWrapper("never gonna give you up")
	assert.IsType(t, &ApiData{}, w.Service)
}

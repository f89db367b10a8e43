/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Never Gonna Give You Up", SanitizeTitle("Never Gonna Give You Up"))
	assert.Equal(t, "Song Official Video", SanitizeTitle("song -- [official video]!!"))
	assert.Equal(t, "Unsupported Title", SanitizeTitle("!!!***"))
	assert.Equal(t, "Unsupported Title", SanitizeTitle(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "abc123", SanitizeFilename("abc123"))
	assert.Equal(t, "track name", SanitizeFilename(`track: "name"?`))
	assert.Equal(t, "notraversal", SanitizeFilename(`no/travers\al`))
	assert.Empty(t, SanitizeFilename(`<>:"/\|?*`))
}

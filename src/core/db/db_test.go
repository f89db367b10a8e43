/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgresolve/src/utils"
)

func TestSaveAndGetTrack(t *testing.T) {
	track := utils.CachedTrack{
		TrackID:  "dbtest00001",
		Name:     "Stored Song",
		URL:      "https://www.youtube.com/watch?v=dbtest00001",
		Duration: 213,
		Platform: utils.YouTube,
	}
	require.NoError(t, SaveTrack(context.Background(), track))

	got, ok := GetTrack(context.Background(), "dbtest00001")
	require.True(t, ok)
	assert.Equal(t, track, got)

	_, ok = GetTrack(context.Background(), "neverstored")
	assert.False(t, ok)

	_, ok = GetTrack(context.Background(), "")
	assert.False(t, ok)
}

func TestGetTrackByURL(t *testing.T) {
	track := utils.CachedTrack{
		TrackID:  "dbtest00002",
		Name:     "Linked Song",
		URL:      "https://open.spotify.com/track/7dbTestByUrl00000001",
		Platform: utils.Spotify,
	}
	require.NoError(t, SaveTrack(context.Background(), track))

	got, ok := GetTrackByURL(context.Background(), track.URL)
	require.True(t, ok)
	assert.Equal(t, track, got)

	_, ok = GetTrackByURL(context.Background(), "https://open.spotify.com/track/unknown0001")
	assert.False(t, ok)

	_, ok = GetTrackByURL(context.Background(), "")
	assert.False(t, ok)
}

func TestSaveTrackIgnoresEmptyID(t *testing.T) {
	require.NoError(t, SaveTrack(context.Background(), utils.CachedTrack{URL: "https://x.example"}))

	_, ok := GetTrackByURL(context.Background(), "https://x.example")
	assert.False(t, ok)
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgresolve/src/utils"
)

const searchFixture = `{
  "contents": [
    {
      "videoRenderer": {
        "videoId": "dQw4w9WgXcQ",
        "title": {"runs": [{"text": "Never Gonna Give You Up"}]},
        "lengthText": {"simpleText": "3:33"},
        "thumbnail": {"thumbnails": [{"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}]},
        "viewCountText": {"simpleText": "1.6B views"},
        "ownerText": {"runs": [{"text": "Rick Astley"}]}
      }
    },
    {
      "videoRenderer": {
        "videoId": "liveliveliv",
        "title": {"runs": [{"text": "Some Live Stream"}]},
        "lengthText": {"simpleText": "1:00"},
        "badges": [
          {"metadataBadgeRenderer": {"style": "BADGE_STYLE_TYPE_LIVE_NOW"}}
        ]
      }
    },
    {
      "videoRenderer": {
        "videoId": "noduration1",
        "title": {"runs": [{"text": "Upcoming Premiere"}]}
      }
    },
    {
      "videoRenderer": {
        "videoId": "secondhit01",
        "title": {"runs": [{"text": "Second Hit"}]},
        "lengthText": {"simpleText": "1:02:03"}
      }
    }
  ]
}`

func TestParseResults(t *testing.T) {
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(searchFixture), &data))

	var tracks []utils.MusicTrack
	parseResults(data["contents"], &tracks, 10)

	require.Len(t, tracks, 2)

	first := tracks[0]
	assert.Equal(t, "dQw4w9WgXcQ", first.Id)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", first.Url)
	assert.Equal(t, "Never Gonna Give You Up", first.Title)
	assert.Equal(t, 213, first.Duration)
	assert.Equal(t, "Rick Astley", first.Channel)
	assert.Equal(t, "1.6B views", first.Views)
	assert.Equal(t, utils.YouTube, first.Platform)

	assert.Equal(t, "secondhit01", tracks[1].Id)
	assert.Equal(t, 3723, tracks[1].Duration)
}

func TestParseResultsHonorsLimit(t *testing.T) {
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(searchFixture), &data))

	var tracks []utils.MusicTrack
	parseResults(data["contents"], &tracks, 1)

	require.Len(t, tracks, 1)
	assert.Equal(t, "dQw4w9WgXcQ", tracks[0].Id)
}

func TestDig(t *testing.T) {
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"a": [{"b": "c"}]}`), &data))

	assert.Equal(t, "c", dig(data, "a", 0, "b"))
	assert.Nil(t, dig(data, "a", 1, "b"))
	assert.Nil(t, dig(data, "missing"))
	assert.Nil(t, dig(nil, "a"))
}

func TestSafeString(t *testing.T) {
	assert.Equal(t, "x", safeString("x"))
	assert.Empty(t, safeString(nil))
	assert.Empty(t, safeString(42))
}

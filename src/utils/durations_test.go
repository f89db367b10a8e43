/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMediaDurationMissingFile(t *testing.T) {
	assert.Zero(t, GetMediaDuration(filepath.Join(t.TempDir(), "missing.mp3")))
}

func TestSecToMin(t *testing.T) {
	cases := map[int]string{
		0:      "0:00",
		-5:     "0:00",
		59:     "0:59",
		60:     "1:00",
		213:    "3:33",
		3723:   "1:02:03",
		90061:  "1d 01:01:01",
		359999: "4d 03:59:59",
	}
	for in, want := range cases {
		assert.Equal(t, want, SecToMin(in), "seconds=%d", in)
	}
}

func TestParseClock(t *testing.T) {
	assert.Equal(t, 213, ParseClock("3:33"))
	assert.Equal(t, 3723, ParseClock("1:02:03"))
	assert.Equal(t, 59, ParseClock("59"))
	assert.Zero(t, ParseClock("abc"))
	assert.Zero(t, ParseClock(""))
}

func TestSecToMinRoundTrips(t *testing.T) {
	for _, seconds := range []int{1, 59, 61, 600, 3599, 3600, 7262} {
		assert.Equal(t, seconds, ParseClock(SecToMin(seconds)), "seconds=%d", seconds)
	}
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"os"
	"testing"
	"time"

	"tgresolve/config"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tgresolve-dl-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	config.Conf = config.Config{
		DownloadsDir:     dir,
		CacheDir:         dir,
		DefaultService:   "youtube",
		MinRequestDelay:  time.Millisecond,
		MaxRequestJitter: time.Millisecond,
		MirrorRetries:    2,
		MirrorRetryDelay: 2 * time.Millisecond,
	}

	os.Exit(m.Run())
}

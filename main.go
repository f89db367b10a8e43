/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/mem"

	"tgresolve/config"
	"tgresolve/src/core"
	"tgresolve/src/core/db"
	"tgresolve/src/core/dl"
	"tgresolve/src/utils"
)

// main resolves a single query end to end: metadata, a stream URL or a
// downloaded file, and optionally the composited thumbnail. This is the
// exact call sequence a bot's play handler performs.
func main() {
	video := flag.Bool("video", false, "resolve in video mode (720p cap)")
	download := flag.Bool("download", false, "download the media instead of resolving a stream URL")
	thumb := flag.Bool("thumb", false, "compose the now-playing thumbnail")
	avatar := flag.String("avatar", "", "avatar image path or URL for the thumbnail")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: tgresolve [flags] <youtube url | search text>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.InitDatabase(ctx); err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	defer db.CloseDatabase(context.Background())

	if vm, err := mem.VirtualMemory(); err == nil {
		log.Printf("starting up, %d MiB memory free", vm.Available/1024/1024)
	}

	if err := run(ctx, query, *video, *download, *thumb, *avatar); err != nil {
		log.Fatalf("resolution failed: %v", err)
	}
}

func run(ctx context.Context, query string, video, download, thumb bool, avatar string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	wrapper := dl.NewDownloaderWrapper(query)

	var (
		tracks utils.PlatformTracks
		err    error
	)
	if wrapper.IsValid() {
		tracks, err = wrapper.GetInfo(ctx)
	} else {
		tracks, err = wrapper.Search(ctx)
	}
	if err != nil {
		return fmt.Errorf("metadata resolution: %w", err)
	}
	if len(tracks.Results) == 0 {
		return fmt.Errorf("no results for %q", query)
	}

	track := tracks.Results[0]
	fmt.Printf("id:        %s\ntitle:     %s\nchannel:   %s\nduration:  %s\nthumbnail: %s\n",
		track.Id, track.Title, track.Channel, utils.SecToMin(track.Duration), track.Thumbnail)

	// Resolving by the canonical URL keeps cache keys stable.
	resolver := dl.NewDownloaderWrapper(track.Url)
	info, err := resolver.GetTrack(ctx)
	if err != nil {
		return fmt.Errorf("stream resolution: %w", err)
	}

	if download {
		path, err := resolver.DownloadTrack(ctx, info, video)
		if err != nil {
			return fmt.Errorf("download: %w", err)
		}
		fmt.Printf("file:      %s\n", path)
	} else if info.CdnURL != "" {
		fmt.Printf("stream:    %s\n", info.CdnURL)
	}

	if thumb {
		cached := utils.CachedTrack{
			TrackID:   track.Id,
			Name:      track.Title,
			URL:       track.Url,
			Thumbnail: track.Thumbnail,
			Duration:  track.Duration,
			Views:     track.Views,
			Channel:   track.Channel,
			Platform:  track.Platform,
			IsVideo:   video,
		}
		path, err := core.GenThumb(cached, avatar)
		if err != nil {
			return fmt.Errorf("thumbnail: %w", err)
		}
		if path != "" {
			fmt.Printf("thumb:     %s\n", path)
		}
	}

	return nil
}

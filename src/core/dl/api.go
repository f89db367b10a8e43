/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Laky-64/gologging"
	"resty.dev/v3"

	"tgresolve/config"
	"tgresolve/src/core/cache"
	"tgresolve/src/core/db"
	"tgresolve/src/utils"
)

// defaultMirrors is the baked-in list of equivalent public API gateways.
// API_URL overrides it.
var defaultMirrors = []string{
	"https://tgmusic.fallenapi.fun",
	"https://tgm.fallenapi.fun",
	"https://music.fallenapi.fun",
}

var (
	mirrorsOnce sync.Once
	apiMirrors  *rotator
)

func mirrors() *rotator {
	mirrorsOnce.Do(func() {
		list := config.Conf.ApiUrls
		if len(list) == 0 {
			list = defaultMirrors
		}
		apiMirrors = newRotator(list)
	})
	return apiMirrors
}

var apiClient = resty.New().SetTimeout(15 * time.Second)

// Resolved metadata is cached so repeat queries skip the mirrors. Stream
// URLs expire quickly, so GetTrack results live only in memory and only
// briefly.
var (
	infoCache      = cache.NewCache[utils.PlatformTracks](time.Hour)
	trackInfoCache = cache.NewCache[utils.TrackInfo](30 * time.Minute)
)

// ApiData fetches track and playlist information from the public mirror API.
// It is both a standalone backend for non-YouTube platform URLs and the
// fallback when YouTube scraping is blocked.
type ApiData struct {
	Query    string
	APIKey   string
	Patterns map[string]*regexp.Regexp
}

var apiPatterns = map[string]*regexp.Regexp{
	utils.Apple:      regexp.MustCompile(`(?i)^https?:\/\/music\.apple\.com\/[a-zA-Z-]+\/(?:song\/(?:[^\/]+\/)?\d+|album\/[^\/]+\/\d+(?:\?i=\d+)?|playlist\/[^\/]+\/pl\.[\w.-]+|artist\/[^\/]+\/\d+)(?:\?.*)?$`),
	utils.Spotify:    regexp.MustCompile(`(?i)^(https?://)?([a-z0-9-]+\.)*spotify\.com/(track|playlist|album|artist)/[a-zA-Z0-9]+(\?.*)?$`),
	"yt_playlist":    regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?(?:youtube\.com|music\.youtube\.com)/(?:playlist|watch)\?.*\blist=([\w-]+)`),
	"yt_music":       regexp.MustCompile(`(?i)^(?:https?://)?music\.youtube\.com/(?:watch|playlist)\?.*v=([\w-]+)`),
	utils.JioSaavn:   regexp.MustCompile(`(?i)https?:\/\/(?:www\.)?jiosaavn\.com\/(song|album|playlist|featured)\/[^\/]+\/([A-Za-z0-9_]+)`),
	utils.Deezer:     regexp.MustCompile(`(?i)https?:\/\/(?:www\.)?deezer\.com\/(?:[a-z]{2}\/)?(track|album|playlist)\/(\d+)`),
	utils.SoundCloud: regexp.MustCompile(`(?i)^(https?://)?(www\.)?soundcloud\.com/[a-zA-Z0-9_-]+/(sets/)?[a-zA-Z0-9._-]+(\?.*)?$`),
	utils.Gaana:      regexp.MustCompile(`(?i)https?:\/\/(?:www\.)?gaana\.com\/(song|album|playlist|artist)\/([A-Za-z0-9\-]+)`),
}

// NewApiData creates and initializes a new ApiData instance with the provided query.
func NewApiData(query string) *ApiData {
	return &ApiData{
		Query:    strings.TrimSpace(query),
		APIKey:   config.Conf.ApiKey,
		Patterns: apiPatterns,
	}
}

// IsValid checks if the query is a valid URL for any of the supported platforms.
func (a *ApiData) IsValid() bool {
	if a.Query == "" || mirrors().Len() == 0 {
		return false
	}

	for _, pattern := range a.Patterns {
		if pattern.MatchString(a.Query) {
			return true
		}
	}
	return false
}

// getJSON walks the mirror ring once, retrying each mirror a fixed number of
// times with a jittered sleep between attempts. The last error wins only
// when every mirror is exhausted.
func (a *ApiData) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	retries := config.Conf.MirrorRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for _, mirror := range mirrors().Cycle() {
		for attempt := 0; attempt < retries; attempt++ {
			if attempt > 0 {
				if err := sleepWithJitter(ctx, config.Conf.MirrorRetryDelay); err != nil {
					return err
				}
			}

			if err := acquireRequestSlot(ctx); err != nil {
				return err
			}

			resp, err := apiClient.R().
				SetContext(ctx).
				SetHeader("X-API-Key", a.APIKey).
				SetQueryString(query.Encode()).
				SetResult(out).
				Get(mirror + path)

			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				lastErr = fmt.Errorf("%s: %w", mirror, err)
				continue
			}

			if resp.IsError() {
				lastErr = fmt.Errorf("%s returned %s", mirror, resp.Status())
				// 4xx other than 429 will not improve on retry, rotate now.
				if code := resp.StatusCode(); code >= 400 && code < 500 && code != 429 {
					break
				}
				continue
			}

			return nil
		}

		gologging.WarnF("mirror %s failed for %s: %v", path, a.Query, lastErr)
	}

	if lastErr == nil {
		lastErr = errors.New("no mirrors configured")
	}
	return fmt.Errorf("all mirrors failed: %w", lastErr)
}

// GetInfo retrieves metadata for a track or playlist from the API.
// Previously resolved queries are served from the cache without touching
// the mirrors.
func (a *ApiData) GetInfo(ctx context.Context) (utils.PlatformTracks, error) {
	if !a.IsValid() {
		return utils.PlatformTracks{}, errors.New("the provided URL is invalid or the platform is not supported")
	}

	if data, ok := infoCache.Get(a.Query); ok {
		return data, nil
	}
	if cached, ok := db.GetTrackByURL(ctx, a.Query); ok {
		return utils.PlatformTracks{Results: []utils.MusicTrack{cachedToTrack(cached)}}, nil
	}

	var data utils.PlatformTracks
	if err := a.getJSON(ctx, "/api/get_url", url.Values{"url": {a.Query}}, &data); err != nil {
		return utils.PlatformTracks{}, fmt.Errorf("the GetInfo request failed: %w", err)
	}

	infoCache.Set(a.Query, data)
	for _, track := range data.Results {
		saveResolved(ctx, track)
	}
	return data, nil
}

// Search queries the API for a track. URL queries resolve directly instead.
func (a *ApiData) Search(ctx context.Context) (utils.PlatformTracks, error) {
	if a.IsValid() {
		return a.GetInfo(ctx)
	}

	var data utils.PlatformTracks
	err := a.getJSON(ctx, "/api/search", url.Values{
		"query": {a.Query},
		"limit": {"5"},
	}, &data)
	if err != nil {
		return utils.PlatformTracks{}, fmt.Errorf("the search request failed: %w", err)
	}
	return data, nil
}

// GetTrack retrieves detailed information for a single track from the API.
func (a *ApiData) GetTrack(ctx context.Context) (utils.TrackInfo, error) {
	if info, ok := trackInfoCache.Get(a.Query); ok {
		return info, nil
	}

	var data utils.TrackInfo
	if err := a.getJSON(ctx, "/api/track", url.Values{"url": {a.Query}}, &data); err != nil {
		return utils.TrackInfo{}, fmt.Errorf("the GetTrack request failed: %w", err)
	}

	trackInfoCache.Set(a.Query, data)
	return data, nil
}

// downloadTrack downloads a track using the API. YouTube video downloads are
// delegated to yt-dlp, and a failed API download of a YouTube track falls
// back to it as well.
func (a *ApiData) downloadTrack(ctx context.Context, info utils.TrackInfo, video bool) (string, error) {
	yt := NewYouTubeData(a.Query)
	if info.Platform == utils.YouTube && video {
		return yt.downloadTrack(ctx, info, video)
	}

	downloader, err := NewDownload(ctx, info)
	if err != nil {
		return "", fmt.Errorf("failed to initialize the download: %w", err)
	}

	filePath, err := downloader.Process()
	if err != nil {
		if info.Platform == utils.YouTube {
			return yt.downloadTrack(ctx, info, video)
		}
		return "", fmt.Errorf("the download process failed: %w", err)
	}
	return filePath, nil
}

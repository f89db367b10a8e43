/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Laky-64/gologging"
	"github.com/kkdai/youtube/v2"

	"tgresolve/config"
	"tgresolve/src/core/db"
	"tgresolve/src/utils"
)

// YouTubeData is the primary extraction backend. Metadata comes from the
// innertube search endpoint, stream URLs from the player API, and downloads
// from yt-dlp, with the mirror API as fallback at every step.
type YouTubeData struct {
	Query    string
	Patterns map[string]*regexp.Regexp
}

var youtubePatterns = map[string]*regexp.Regexp{
	"youtube":   regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?v=([\w-]{11})(?:[&#?].*)?$`),
	"youtu_be":  regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([\w-]{11})(?:[?#].*)?$`),
	"yt_shorts": regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/shorts/([\w-]{11})(?:[?#].*)?$`),
}

var ytClient = youtube.Client{}

// NewYouTubeData initializes a YouTubeData instance with pre-compiled regex
// patterns and a cleaned query.
func NewYouTubeData(query string) *YouTubeData {
	return &YouTubeData{
		Query:    clearQuery(query),
		Patterns: youtubePatterns,
	}
}

// clearQuery removes extraneous URL parameters and fragments from a given query string.
func clearQuery(query string) string {
	query = strings.SplitN(query, "#", 2)[0]
	query = strings.SplitN(query, "&", 2)[0]
	return strings.TrimSpace(query)
}

// normalizeYouTubeURL converts youtu.be and shorts URLs into a standard watch URL.
func (y *YouTubeData) normalizeYouTubeURL(url string) string {
	var videoID string
	switch {
	case strings.Contains(url, "youtu.be/"):
		parts := strings.SplitN(strings.SplitN(url, "youtu.be/", 2)[1], "?", 2)
		videoID = strings.SplitN(parts[0], "#", 2)[0]
	case strings.Contains(url, "youtube.com/shorts/"):
		parts := strings.SplitN(strings.SplitN(url, "youtube.com/shorts/", 2)[1], "?", 2)
		videoID = strings.SplitN(parts[0], "#", 2)[0]
	default:
		return url
	}
	return "https://www.youtube.com/watch?v=" + videoID
}

// extractVideoID parses a YouTube URL and extracts the video ID.
func (y *YouTubeData) extractVideoID(url string) string {
	url = y.normalizeYouTubeURL(url)
	for _, pattern := range y.Patterns {
		if match := pattern.FindStringSubmatch(url); len(match) > 1 {
			return match[1]
		}
	}
	return ""
}

// IsValid checks if the query string matches any of the known YouTube URL patterns.
func (y *YouTubeData) IsValid() bool {
	if y.Query == "" {
		return false
	}

	for _, pattern := range y.Patterns {
		if pattern.MatchString(y.Query) {
			return true
		}
	}
	return false
}

// GetInfo retrieves metadata for a single video. Previously resolved videos
// are served from the track cache without touching the network.
func (y *YouTubeData) GetInfo(ctx context.Context) (utils.PlatformTracks, error) {
	if !y.IsValid() {
		return utils.PlatformTracks{}, errors.New("the provided URL is invalid or the platform is not supported")
	}

	y.Query = y.normalizeYouTubeURL(y.Query)
	videoID := y.extractVideoID(y.Query)
	if videoID == "" {
		return utils.PlatformTracks{}, errors.New("unable to extract the video ID")
	}

	if cached, ok := db.GetTrack(ctx, videoID); ok {
		return utils.PlatformTracks{Results: []utils.MusicTrack{cachedToTrack(cached)}}, nil
	}

	track, err := y.resolveVideo(ctx, videoID)
	if err != nil {
		return utils.PlatformTracks{}, err
	}

	saveResolved(ctx, track)
	return utils.PlatformTracks{Results: []utils.MusicTrack{track}}, nil
}

// resolveVideo looks a video id up via innertube search and falls back to
// the player API when search comes back empty or blocked.
func (y *YouTubeData) resolveVideo(ctx context.Context, videoID string) (utils.MusicTrack, error) {
	tracks, err := searchYouTube(ctx, videoID, 10)
	if err == nil {
		for _, track := range tracks {
			if track.Id == videoID {
				return track, nil
			}
		}
		err = errors.New("no video results were found")
	}

	gologging.WarnF("innertube lookup for %s failed (%v), trying player API", videoID, err)

	if err := acquireRequestSlot(ctx); err != nil {
		return utils.MusicTrack{}, err
	}

	video, vErr := ytClient.GetVideoContext(ctx, videoID)
	if vErr != nil {
		return utils.MusicTrack{}, fmt.Errorf("video lookup failed: %w (search: %v)", vErr, err)
	}

	track := utils.MusicTrack{
		Id:       video.ID,
		Url:      "https://www.youtube.com/watch?v=" + video.ID,
		Title:    video.Title,
		Duration: int(video.Duration.Seconds()),
		Channel:  video.Author,
		Platform: utils.YouTube,
	}
	if len(video.Thumbnails) > 0 {
		track.Thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}
	return track, nil
}

// Search performs a text search on YouTube.
func (y *YouTubeData) Search(ctx context.Context) (utils.PlatformTracks, error) {
	tracks, err := searchYouTube(ctx, y.Query, 5)
	if err != nil {
		return utils.PlatformTracks{}, err
	}
	if len(tracks) == 0 {
		return utils.PlatformTracks{}, errors.New("no video results were found")
	}
	return utils.PlatformTracks{Results: tracks}, nil
}

// GetTrack resolves a playable stream URL for the query. The player API is
// tried first; when it is blocked the mirror API takes over.
func (y *YouTubeData) GetTrack(ctx context.Context) (utils.TrackInfo, error) {
	if y.Query == "" {
		return utils.TrackInfo{}, errors.New("the query is empty")
	}
	if !y.IsValid() {
		return utils.TrackInfo{}, errors.New("the provided URL is invalid or the platform is not supported")
	}

	y.Query = y.normalizeYouTubeURL(y.Query)
	videoID := y.extractVideoID(y.Query)
	if videoID == "" {
		return utils.TrackInfo{}, errors.New("unable to extract the video ID")
	}

	streamURL, video, err := y.streamURL(ctx, videoID, false)
	if err == nil {
		return utils.TrackInfo{
			Id:       videoID,
			Name:     video.Title,
			URL:      y.Query,
			CdnURL:   streamURL,
			Duration: int(video.Duration.Seconds()),
			Platform: utils.YouTube,
		}, nil
	}

	gologging.WarnF("player API stream for %s failed (%v), falling back to mirror API", videoID, err)

	trackInfo, apiErr := NewApiData(y.Query).GetTrack(ctx)
	if apiErr != nil {
		return utils.TrackInfo{}, fmt.Errorf("stream resolution failed: %w (player API: %v)", apiErr, err)
	}
	return trackInfo, nil
}

// streamURL asks the player API for a direct media URL.
func (y *YouTubeData) streamURL(ctx context.Context, videoID string, wantVideo bool) (string, *youtube.Video, error) {
	if err := acquireRequestSlot(ctx); err != nil {
		return "", nil, err
	}

	video, err := ytClient.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", nil, fmt.Errorf("get video: %w", err)
	}

	format, err := selectFormat(video, wantVideo)
	if err != nil {
		return "", nil, err
	}

	streamURL, err := ytClient.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return "", nil, fmt.Errorf("get stream url: %w", err)
	}
	return streamURL, video, nil
}

var audioQualityRank = map[string]int{
	"AUDIO_QUALITY_LOW":    1,
	"AUDIO_QUALITY_MEDIUM": 2,
	"AUDIO_QUALITY_HIGH":   3,
}

// selectFormat picks a stream format. Audio prefers opus at 48kHz without a
// video track; video prefers mp4 with sound, capped at 720p.
func selectFormat(video *youtube.Video, wantVideo bool) (*youtube.Format, error) {
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, errors.New("no usable formats")
	}

	var selected *youtube.Format
	selectedPriority := -1 << 30

	for i := range formats {
		format := &formats[i]
		priority := 0

		if wantVideo {
			if !strings.Contains(format.MimeType, "video/") {
				continue
			}
			if format.Height > 720 {
				priority -= 5
			}
			if strings.Contains(format.MimeType, "video/mp4") {
				priority += 2
			}
			priority += audioQualityRank[format.AudioQuality]
		} else {
			if format.AudioSampleRate != "48000" {
				priority--
			}
			if !strings.Contains(format.MimeType, "opus") {
				priority--
			}
			if strings.Contains(format.MimeType, "video/") {
				priority -= 5
			}
			priority += 2 * audioQualityRank[format.AudioQuality]
		}

		if priority > selectedPriority {
			selected = format
			selectedPriority = priority
		}
	}

	if selected == nil {
		return nil, errors.New("no matching format")
	}
	return selected, nil
}

// downloadTrack downloads a track from YouTube. Audio goes through the
// mirror API first since it does not trip bot detection; yt-dlp is the
// fallback and the only video path.
func (y *YouTubeData) downloadTrack(ctx context.Context, info utils.TrackInfo, video bool) (string, error) {
	if !video {
		if filePath, err := y.downloadWithApi(ctx, info.Id); err == nil {
			return filePath, nil
		}
	}

	return y.downloadWithYtDlp(ctx, info.Id, video)
}

// buildYtdlpParams constructs the command-line parameters for yt-dlp.
func (y *YouTubeData) buildYtdlpParams(videoID string, video bool) []string {
	outputTemplate := filepath.Join(config.Conf.DownloadsDir, "%(id)s.%(ext)s")

	params := []string{
		"yt-dlp",
		"--no-warnings",
		"--quiet",
		"--geo-bypass",
		"--retries", "2",
		"--continue",
		"--no-part",
		"--concurrent-fragments", "3",
		"--socket-timeout", "10",
		"--throttled-rate", "100K",
		"--retry-sleep", "1",
		"--no-write-thumbnail",
		"--no-write-info-json",
		"--no-embed-metadata",
		"--no-embed-chapters",
		"--no-embed-subs",
		"-o", outputTemplate,
	}

	if video {
		formatSelector := "bestvideo[height<=720]+bestaudio/best[height<=720]"
		params = append(params, "-f", formatSelector, "--merge-output-format", "mp4")
	} else {
		params = append(params, "--extract-audio", "--audio-format", "best")
	}

	if cookieFile := y.getCookieFile(); cookieFile != "" {
		params = append(params, "--cookies", cookieFile)
	} else if config.Conf.Proxy != "" {
		params = append(params, "--proxy", config.Conf.Proxy)
	}

	videoURL := "https://www.youtube.com/watch?v=" + videoID
	params = append(params, videoURL, "--print", "after_move:filepath")

	return params
}

// downloadWithYtDlp downloads media from YouTube using the yt-dlp command-line tool.
func (y *YouTubeData) downloadWithYtDlp(ctx context.Context, videoID string, video bool) (string, error) {
	if videoID == "" {
		return "", errors.New("videoID is empty")
	}

	ytdlpParams := y.buildYtdlpParams(videoID, video)
	cmd := exec.CommandContext(ctx, ytdlpParams[0], ytdlpParams[1:]...)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := string(exitErr.Stderr)
			return "", fmt.Errorf("yt-dlp failed with exit code %d: %s", exitErr.ExitCode(), stderr)
		}

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("yt-dlp timed out for video ID: %s", videoID)
		}

		return "", fmt.Errorf("an unexpected error occurred while downloading %s: %w", videoID, err)
	}

	downloadedPathStr := strings.TrimSpace(string(output))
	if downloadedPathStr == "" {
		return "", fmt.Errorf("no output path was returned for %s", videoID)
	}

	if !exists(downloadedPathStr) {
		return "", fmt.Errorf("the file was not found at the reported path: %s", downloadedPathStr)
	}

	return downloadedPathStr, nil
}

// getCookieFile picks a random cookie file from the configured list.
func (y *YouTubeData) getCookieFile() string {
	cookiesPath := config.Conf.CookiesPath
	if len(cookiesPath) == 0 {
		return ""
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(cookiesPath))))
	if err != nil {
		gologging.WarnF("could not pick a cookie file: %v", err)
		return cookiesPath[0]
	}

	return cookiesPath[n.Int64()]
}

// downloadWithApi downloads a track through the mirror API.
func (y *YouTubeData) downloadWithApi(ctx context.Context, videoID string) (string, error) {
	videoUrl := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	api := NewApiData(videoUrl)
	track, err := api.GetTrack(ctx)
	if err != nil {
		return "", err
	}

	down, err := NewDownload(ctx, track)
	if err != nil {
		gologging.ErrorF("error creating download: %v", err)
		return "", err
	}

	return down.Process()
}

func cachedToTrack(cached utils.CachedTrack) utils.MusicTrack {
	return utils.MusicTrack{
		Id:        cached.TrackID,
		Url:       cached.URL,
		Title:     cached.Name,
		Thumbnail: cached.Thumbnail,
		Duration:  cached.Duration,
		Views:     cached.Views,
		Channel:   cached.Channel,
		Platform:  cached.Platform,
	}
}

func saveResolved(ctx context.Context, track utils.MusicTrack) {
	cached := utils.CachedTrack{
		TrackID:   track.Id,
		Name:      track.Title,
		URL:       track.Url,
		Thumbnail: track.Thumbnail,
		Duration:  track.Duration,
		Views:     track.Views,
		Channel:   track.Channel,
		Platform:  track.Platform,
	}
	if err := db.SaveTrack(ctx, cached); err != nil {
		gologging.WarnF("failed to cache track %s: %v", track.Id, err)
	}
}

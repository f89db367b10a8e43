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
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Laky-64/gologging"
	"github.com/shirou/gopsutil/disk"

	"tgresolve/config"
	"tgresolve/src/utils"
)

// maxDiskUsedPercent refuses new downloads once the downloads volume is this full.
const maxDiskUsedPercent = 95.0

var errDurationLimit = errors.New("track exceeds the configured duration limit")

// DownloadSong resolves a cached track to something playable: the URL itself
// for direct links, a fresh stream URL when one can be minted, or a local
// file path otherwise.
func DownloadSong(ctx context.Context, cached *utils.CachedTrack) (string, error) {
	if cached.Platform == utils.DirectLink {
		return cached.URL, nil
	}

	if limit := config.Conf.SongDurationLimit; limit > 0 && cached.Duration > limit {
		return "", fmt.Errorf("%w: %s is %s", errDurationLimit, cached.TrackID, utils.SecToMin(cached.Duration))
	}

	wrapper := NewDownloaderWrapper(cached.URL)
	if !wrapper.IsValid() {
		return "", fmt.Errorf("invalid cached URL: %s", cached.URL)
	}

	track, err := wrapper.GetTrack(ctx)
	if err != nil {
		return "", fmt.Errorf("get track info: %w", err)
	}

	path, err := wrapper.DownloadTrack(ctx, track, cached.IsVideo)
	if err != nil {
		return "", err
	}

	// Tracks resolved without a duration get it probed from the file.
	if cached.Duration == 0 {
		cached.Duration = utils.GetMediaDuration(path)
	}

	return path, nil
}

// Download encapsulates the information and context required for one
// download operation against a CDN URL.
type Download struct {
	Track utils.TrackInfo
	ctx   context.Context
}

// NewDownload creates and validates a new Download instance.
func NewDownload(ctx context.Context, track utils.TrackInfo) (*Download, error) {
	if track.CdnURL == "" {
		return nil, errMissingCDNURL
	}

	return &Download{Track: track, ctx: ctx}, nil
}

// Process fetches the track's CDN URL to the downloads directory and fixes
// the audio container when needed. An already downloaded file wins.
func (d *Download) Process() (string, error) {
	trackID := utils.SanitizeFilename(filepath.Base(d.Track.Id))
	if trackID == "" {
		return "", errors.New("the track id is empty")
	}

	if existing := findExisting(trackID); existing != "" {
		gologging.InfoF("using cached download for %s", trackID)
		return existing, nil
	}

	if err := checkDiskSpace(); err != nil {
		return "", err
	}

	start := time.Now()
	path, err := d.fetchToDisk(trackID)
	if err != nil {
		return "", err
	}
	gologging.InfoF("downloaded %s in %s", trackID, time.Since(start).Round(time.Millisecond))

	if needsAudioFix(path) {
		fixed, err := reencodeAudio(d.ctx, path, trackID)
		if err != nil {
			gologging.WarnF("audio re-encode for %s failed: %v", trackID, err)
			return path, nil
		}
		_ = os.Remove(path)
		return fixed, nil
	}

	return path, nil
}

// fetchToDisk streams the CDN URL into the downloads directory.
func (d *Download) fetchToDisk(trackID string) (string, error) {
	resp, err := sendRequest(d.ctx, http.MethodGet, d.Track.CdnURL, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download the file: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	ext := pickExtension(resp.Header.Get("Content-Disposition"), d.Track.CdnURL)
	dst := filepath.Join(config.Conf.DownloadsDir, trackID+ext)

	file, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaultFilePerm)
	if err != nil {
		return "", fmt.Errorf("failed to create the file: %w", err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	var written int64
	if limit := config.Conf.MaxFileSize; limit > 0 {
		written, err = io.Copy(file, io.LimitReader(resp.Body, limit+1))
		if err == nil && written > limit {
			_ = os.Remove(dst)
			return "", fmt.Errorf("file exceeds the %d byte size limit", limit)
		}
	} else {
		written, err = io.Copy(file, resp.Body)
	}

	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write the file: %w", err)
	}
	if written == 0 {
		_ = os.Remove(dst)
		return "", errors.New("the downloaded file is empty")
	}

	return dst, nil
}

// findExisting returns a previously downloaded file for the track id, if any.
func findExisting(trackID string) string {
	matches, err := filepath.Glob(filepath.Join(config.Conf.DownloadsDir, trackID+".*"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// checkDiskSpace refuses downloads when the downloads volume is nearly full.
func checkDiskSpace() error {
	usage, err := disk.Usage(config.Conf.DownloadsDir)
	if err != nil {
		gologging.WarnF("could not stat disk usage: %v", err)
		return nil
	}

	if usage.UsedPercent > maxDiskUsedPercent {
		return fmt.Errorf("downloads disk is %.1f%% full, refusing to download", usage.UsedPercent)
	}

	if limit := config.Conf.MaxFileSize; limit > 0 && usage.Free < uint64(limit) {
		return fmt.Errorf("only %d bytes free on the downloads disk", usage.Free)
	}

	return nil
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
	".wav":  true,
}

// pickExtension derives a file extension from the Content-Disposition
// header, then the URL path, then a safe default.
func pickExtension(contentDisp, cdnURL string) string {
	if name := extractFilename(contentDisp); name != "" {
		if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
			return ext
		}
	}

	path := strings.SplitN(cdnURL, "?", 2)[0]
	if ext := strings.ToLower(filepath.Ext(path)); len(ext) > 1 && len(ext) <= 5 {
		return ext
	}

	return ".m4a"
}

func needsAudioFix(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".mp4" || ext == ".mkv" {
		// Video containers stay as they are.
		return false
	}
	return !audioExtensions[ext]
}

// reencodeAudio rewrites an oddly containered download into an mp3 the
// player component accepts.
func reencodeAudio(ctx context.Context, inputFile, trackID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	outputFile := filepath.Join(config.Conf.DownloadsDir, trackID+".mp3")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", inputFile, "-vn", "-b:a", "192k", outputFile)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg failed with error: %w\nOutput: %s", err, string(output))
	}

	return outputFile, nil
}

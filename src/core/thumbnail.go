/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package core

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Laky-64/gologging"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"tgresolve/config"
	"tgresolve/src/utils"
)

const (
	FontTitle = "assets/font.ttf"
	FontMeta  = "assets/font2.ttf"

	// DefaultAvatar is pasted when no avatar is given or fetching one fails.
	DefaultAvatar = "assets/bot.jpg"
)

const (
	canvasW = 1280
	canvasH = 720

	coverSize  = 365
	avatarSize = 107
)

// GenThumb renders the "now playing" thumbnail for a resolved track.
// avatar may be a local path, an URL, or empty. The composited PNG is cached
// per track+avatar; a cache hit skips all work.
func GenThumb(song utils.CachedTrack, avatar string) (string, error) {
	return genThumb(song, avatar, "STARTED PLAYING", "")
}

// GenQueueThumb renders the "added to queue" variant of the thumbnail.
func GenQueueThumb(song utils.CachedTrack, avatar string) (string, error) {
	return genThumb(song, avatar, "ADDED TO QUEUE", "que")
}

func genThumb(song utils.CachedTrack, avatar, caption, prefix string) (string, error) {
	if song.Thumbnail == "" {
		return "", nil
	}

	if song.Channel == "" {
		song.Channel = "TgResolve"
	}
	if song.Views == "" {
		song.Views = "699K"
	}

	vidID := utils.SanitizeFilename(song.TrackID)
	cacheFile := filepath.Join(config.Conf.CacheDir, fmt.Sprintf("%s%s_%s.png", prefix, vidID, avatarKey(avatar)))
	if exists(cacheFile) {
		return cacheFile, nil
	}

	tmpFile := filepath.Join(config.Conf.CacheDir, fmt.Sprintf("tmp_%s.png", vidID))
	if err := downloadImage(song.Thumbnail, tmpFile); err != nil {
		return fallbackThumb(fmt.Errorf("thumbnail download: %w", err))
	}

	img, err := imaging.Open(tmpFile)
	_ = os.Remove(tmpFile)
	if err != nil {
		return fallbackThumb(err)
	}

	bg := imaging.Resize(img, canvasW, canvasH, imaging.Lanczos)
	bg = imaging.Blur(bg, 8)
	bg = imaging.AdjustBrightness(bg, -30)

	dc := gg.NewContextForImage(bg)

	// Center square of the raw thumbnail becomes the round cover art.
	side := min(img.Bounds().Dx(), img.Bounds().Dy())
	cover := imaging.CropCenter(img, side, side)
	cover = imaging.Resize(cover, coverSize, coverSize, imaging.Lanczos)
	dc.DrawImage(circleImage(cover, coverSize), (canvasW-coverSize)/2+2, 138)

	if av := loadAvatar(avatar); av != nil {
		av = imaging.Fill(av, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)
		dc.DrawImage(circleImage(av, avatarSize), 710, 427)
	}

	fontTitle, _ := loadFont(FontTitle, 45)
	fontMeta, _ := loadFont(FontMeta, 30)

	dc.SetColor(color.White)

	if fontTitle != nil {
		dc.SetFontFace(fontTitle)
		dc.DrawStringAnchored(caption, canvasW/2, 50, 0.5, 0.5)

		for i, line := range wrapTitle(utils.SanitizeTitle(song.Name), 32, 2) {
			dc.DrawStringAnchored(line, canvasW/2, float64(545+i*48), 0.5, 0.5)
		}
	}

	if fontMeta != nil {
		dc.SetFontFace(fontMeta)
		dc.DrawStringAnchored(song.Channel+" | "+song.Views+" views", canvasW/2, 640, 0.5, 0.5)
	}

	dc.SetLineWidth(5)
	dc.DrawLine(55, 665, 1220, 665)
	dc.Stroke()
	dc.DrawCircle(930, 665, 12)
	dc.Fill()

	if fontMeta != nil {
		dc.SetFontFace(fontMeta)
		dc.DrawStringAnchored("00:00", 40, 697, 0, 0)
		dc.DrawStringAnchored(utils.SecToMin(song.Duration), 1240, 697, 1, 0)
	}

	if err := dc.SavePNG(cacheFile); err != nil {
		return fallbackThumb(err)
	}

	return cacheFile, nil
}

// fallbackThumb degrades to the bundled default image instead of failing the
// whole play flow over a cosmetic error.
func fallbackThumb(err error) (string, error) {
	gologging.WarnF("thumbnail composition failed: %v", err)
	if exists(DefaultAvatar) {
		return DefaultAvatar, nil
	}
	return "", err
}

// avatarKey makes distinct cache files for distinct avatars.
func avatarKey(avatar string) string {
	if avatar == "" {
		return "0"
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(avatar))
	return fmt.Sprintf("%08x", h.Sum32())
}

// loadAvatar opens a local file or fetches an URL, falling back to the
// bundled default. Returns nil when nothing usable is available.
func loadAvatar(avatar string) image.Image {
	if strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "https://") {
		tmp := filepath.Join(config.Conf.CacheDir, fmt.Sprintf("av_%s.png", avatarKey(avatar)))
		if err := downloadImage(avatar, tmp); err == nil {
			if img, err := imaging.Open(tmp); err == nil {
				_ = os.Remove(tmp)
				return img
			}
			_ = os.Remove(tmp)
		}
		avatar = DefaultAvatar
	}

	if avatar == "" {
		avatar = DefaultAvatar
	}

	img, err := imaging.Open(avatar)
	if err != nil {
		if avatar != DefaultAvatar {
			if img, err = imaging.Open(DefaultAvatar); err == nil {
				return img
			}
		}
		return nil
	}
	return img
}

// circleImage masks img to a circle of the given diameter.
func circleImage(img image.Image, size int) image.Image {
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(img, 0, 0)
	return dc.Image()
}

// wrapTitle greedily wraps text to at most maxLines lines of roughly width
// characters, ellipsizing the last line when the title does not fit.
func wrapTitle(text string, width, maxLines int) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		if len(candidate) <= width {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}
		current = word

		if len(lines) == maxLines {
			break
		}
	}

	if current != "" && len(lines) < maxLines {
		lines = append(lines, current)
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	if len(lines) == maxLines && len(strings.Join(lines, " ")) < len(strings.Join(strings.Fields(text), " ")) {
		last := lines[maxLines-1]
		if len(last) > 3 {
			lines[maxLines-1] = last[:len(last)-3] + "..."
		}
	}

	return lines
}

func downloadImage(url, filepath string) error {
	if strings.Contains(url, "ytimg.com") {
		url = strings.Replace(url, "hqdefault.jpg", "maxresdefault.jpg", 1)
	}

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return nil
		},
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "image") {
		return fmt.Errorf("not an image: %s", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	img, err := jpeg.Decode(bytes.NewReader(body))
	if err != nil {
		img, err = png.Decode(bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("decode failed (%s): %v - only JPEG and PNG supported", ct, err)
		}
	}

	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	return png.Encode(file, img)
}

func loadFont(path string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return face, err
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetMediaDuration returns the duration of a local media file or URL in
// seconds, using ffprobe. Returns 0 when the duration cannot be determined.
func GetMediaDuration(input string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_entries", "format=duration",
		input,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("ffprobe timeout exceeded for %s", input)
		return 0
	}

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		log.Printf("ffprobe failed: %s", msg)
		return 0
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		log.Printf("ffprobe failed: %s", err)
		return 0
	}

	if out.Format.Duration == "" {
		log.Print("ffprobe succeeded but duration not found")
		return 0
	}

	dur, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		log.Printf("ffprobe failed: %s", err)
		return 0
	}

	return int(dur + 0.5)
}

// SecToMin converts a duration in seconds to a formatted string (MM:SS or HH:MM:SS).
func SecToMin(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}

	d := seconds / 86400
	h := (seconds % 86400) / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if d > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", d, h, m, s)
	}

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseClock converts a "H:MM:SS" style duration label into seconds.
func ParseClock(s string) int {
	parts := strings.Split(s, ":")
	total := 0
	mul := 1
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0
		}
		total += n * mul
		mul *= 60
	}
	return total
}

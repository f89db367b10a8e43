/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package utils

import (
	"regexp"
	"strings"
)

var (
	nonWordRegex  = regexp.MustCompile(`\W+`)
	sanitizeRegex = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// SanitizeTitle collapses non-word runs into single spaces and title-cases
// the result, so odd unicode in upstream titles renders cleanly.
func SanitizeTitle(title string) string {
	title = nonWordRegex.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return "Unsupported Title"
	}

	words := strings.Fields(title)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// SanitizeFilename removes characters that are unsafe in filenames.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	name = sanitizeRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"strings"
	"sync/atomic"
)

// rotator round-robins across a fixed list of equivalent mirror base URLs.
// Every pick advances the cursor, so consecutive resolutions spread load and
// a blocked mirror is not hammered first every time.
type rotator struct {
	mirrors []string
	cursor  atomic.Uint64
}

func newRotator(mirrors []string) *rotator {
	cleaned := make([]string, 0, len(mirrors))
	for _, m := range mirrors {
		m = strings.TrimRight(strings.TrimSpace(m), "/")
		if m != "" {
			cleaned = append(cleaned, m)
		}
	}
	return &rotator{mirrors: cleaned}
}

// Len returns the number of configured mirrors.
func (r *rotator) Len() int {
	return len(r.mirrors)
}

// Next returns the current mirror and advances the cursor.
func (r *rotator) Next() string {
	if len(r.mirrors) == 0 {
		return ""
	}
	n := r.cursor.Add(1) - 1
	return r.mirrors[n%uint64(len(r.mirrors))]
}

// Cycle returns one full walk of the mirror list starting at the current
// cursor position. The cursor advances by one, not by the full cycle, so
// concurrent callers still interleave.
func (r *rotator) Cycle() []string {
	if len(r.mirrors) == 0 {
		return nil
	}

	start := r.cursor.Add(1) - 1
	out := make([]string, len(r.mirrors))
	for i := range r.mirrors {
		out[i] = r.mirrors[(start+uint64(i))%uint64(len(r.mirrors))]
	}
	return out
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatorNext(t *testing.T) {
	r := newRotator([]string{"https://a", "https://b", "https://c"})

	got := []string{r.Next(), r.Next(), r.Next(), r.Next()}
	assert.Equal(t, []string{"https://a", "https://b", "https://c", "https://a"}, got)
}

func TestRotatorCycleStartsAtCursor(t *testing.T) {
	r := newRotator([]string{"https://a", "https://b", "https://c"})

	require.Equal(t, []string{"https://a", "https://b", "https://c"}, r.Cycle())
	// The cursor advanced by one, so the next cycle starts at b.
	require.Equal(t, []string{"https://b", "https://c", "https://a"}, r.Cycle())
}

func TestRotatorCleansInput(t *testing.T) {
	r := newRotator([]string{" https://a/ ", "", "https://b"})

	require.Equal(t, 2, r.Len())
	assert.Equal(t, "https://a", r.Next())
	assert.Equal(t, "https://b", r.Next())
}

func TestRotatorEmpty(t *testing.T) {
	r := newRotator(nil)

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Next())
	assert.Nil(t, r.Cycle())
}

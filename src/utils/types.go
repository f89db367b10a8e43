/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package utils

// Platform identifiers shared across the resolver.
const (
	YouTube    = "youtube"
	Spotify    = "spotify"
	Apple      = "apple_music"
	SoundCloud = "soundcloud"
	Deezer     = "deezer"
	JioSaavn   = "jiosaavn"
	Gaana      = "gaana"
	DirectLink = "direct_link"
)

// MusicTrack is the canonical metadata for a single resolved video/track.
type MusicTrack struct {
	Id        string `json:"id"`
	Url       string `json:"url"`
	Title     string `json:"name"`
	Thumbnail string `json:"cover"`
	Duration  int    `json:"duration"`
	Views     string `json:"views,omitempty"`
	Channel   string `json:"artist,omitempty"`
	Platform  string `json:"platform"`
}

// PlatformTracks is the result set returned by GetInfo and Search.
type PlatformTracks struct {
	Results []MusicTrack `json:"results"`
}

// TrackInfo carries everything needed to play or download a single track.
// CdnURL, when set, is a directly streamable media URL.
type TrackInfo struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	CdnURL   string `json:"cdn_url"`
	Key      string `json:"key,omitempty"`
	Duration int    `json:"duration"`
	Platform string `json:"platform"`
}

// CachedTrack is a resolved track as remembered between requests,
// plus the presentation fields the thumbnail composer needs.
type CachedTrack struct {
	TrackID   string `bson:"track_id"`
	Name      string `bson:"name"`
	URL       string `bson:"url"`
	Thumbnail string `bson:"thumbnail"`
	Duration  int    `bson:"duration"`
	Views     string `bson:"views,omitempty"`
	Channel   string `bson:"channel,omitempty"`
	Platform  string `bson:"platform"`
	IsVideo   bool   `bson:"is_video"`
}

// FFProbeFormat mirrors the format block of ffprobe -print_format json.
type FFProbeFormat struct {
	Format struct {
		Duration string `json:"duration"`
		Tags     struct {
			Title string `json:"title"`
		} `json:"tags"`
	} `json:"format"`
}

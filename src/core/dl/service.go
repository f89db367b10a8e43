/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

package dl

import (
	"context"

	"tgresolve/config"
	"tgresolve/src/utils"
)

// MusicService defines a standard interface for interacting with the
// available extraction backends. This allows a unified approach to handling
// YouTube scraping, the public mirror API and plain direct links.
type MusicService interface {
	// IsValid determines if the service can handle the given query.
	IsValid() bool
	// GetInfo retrieves metadata for a track or playlist.
	GetInfo(ctx context.Context) (utils.PlatformTracks, error)
	// Search queries the service for a track.
	Search(ctx context.Context) (utils.PlatformTracks, error)
	// GetTrack fetches detailed information for a single track.
	GetTrack(ctx context.Context) (utils.TrackInfo, error)
	// downloadTrack handles the download of a track.
	downloadTrack(ctx context.Context, trackInfo utils.TrackInfo, video bool) (string, error)
}

// DownloaderWrapper provides a unified interface over the backend selected
// for a query.
type DownloaderWrapper struct {
	Query   string
	Service MusicService
}

// NewDownloaderWrapper selects the appropriate MusicService based on the
// query format or configuration defaults.
func NewDownloaderWrapper(query string) *DownloaderWrapper {
	yt := NewYouTubeData(query)
	api := NewApiData(query)
	direct := NewDirectLink(query)

	var chosen MusicService
	switch {
	case yt.IsValid():
		chosen = yt
	case api.IsValid():
		chosen = api
	case direct.IsValid():
		chosen = direct
	default:
		switch config.Conf.DefaultService {
		case "api":
			chosen = api
		default:
			chosen = yt
		}
	}

	return &DownloaderWrapper{
		Query:   query,
		Service: chosen,
	}
}

// IsValid checks if the underlying service can handle the query.
func (d *DownloaderWrapper) IsValid() bool {
	return d.Service != nil && d.Service.IsValid()
}

// GetInfo retrieves metadata by delegating the call to the wrapped service.
func (d *DownloaderWrapper) GetInfo(ctx context.Context) (utils.PlatformTracks, error) {
	return d.Service.GetInfo(ctx)
}

// Search performs a search by delegating the call to the wrapped service.
func (d *DownloaderWrapper) Search(ctx context.Context) (utils.PlatformTracks, error) {
	return d.Service.Search(ctx)
}

// GetTrack retrieves detailed track information by delegating the call to the wrapped service.
func (d *DownloaderWrapper) GetTrack(ctx context.Context) (utils.TrackInfo, error) {
	return d.Service.GetTrack(ctx)
}

// DownloadTrack downloads a track by delegating the call to the wrapped service.
// It returns the file path of the downloaded track or an error if the download fails.
func (d *DownloaderWrapper) DownloadTrack(ctx context.Context, info utils.TrackInfo, video bool) (string, error) {
	return d.Service.downloadTrack(ctx, info, video)
}

/*
 * TgResolve - Media Resolver for Telegram Music Bots
 *  Copyright (c) 2026 TgResolve Authors
 *
 *  Licensed under GNU GPL v3
 */

// Package db persists resolved track metadata in MongoDB so repeat queries
// skip the network. It degrades to the in-memory cache when MONGO_URI is
// unset.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Laky-64/gologging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tgresolve/config"
	"tgresolve/src/core/cache"
	"tgresolve/src/utils"
)

const (
	databaseName   = "tgresolve"
	collectionName = "tracks"

	// Resolved metadata is considered fresh for a week; stream URLs expire
	// much sooner and are never stored here.
	trackTTL = 7 * 24 * time.Hour
)

var (
	client *mongo.Client
	tracks *mongo.Collection

	// memCache fronts Mongo so hot tracks never touch the database twice.
	memCache = cache.NewCache[utils.CachedTrack](time.Hour)

	// urlIndex maps canonical track URLs onto track ids for lookups that
	// start from a URL instead of an id.
	urlIndex = cache.NewCache[string](time.Hour)
)

// InitDatabase connects to MongoDB when configured. Without MONGO_URI the
// resolver runs with the in-memory cache only.
func InitDatabase(ctx context.Context) error {
	uri := config.Conf.MongoUri
	if uri == "" {
		gologging.Info("MONGO_URI is not set, using in-memory track cache only")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	client = c
	tracks = c.Database(databaseName).Collection(collectionName)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "track_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(trackTTL.Seconds())),
		},
		{
			Keys: bson.D{{Key: "url", Value: 1}},
		},
	}

	if _, err := tracks.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}

	gologging.Info("Connected to MongoDB")
	return nil
}

// CloseDatabase disconnects the Mongo client, if one was opened.
func CloseDatabase(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		gologging.WarnF("mongo disconnect: %v", err)
	}
}

type trackDoc struct {
	utils.CachedTrack `bson:",inline"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// SaveTrack upserts a resolved track keyed by its video id.
func SaveTrack(ctx context.Context, track utils.CachedTrack) error {
	if track.TrackID == "" {
		return nil
	}

	memCache.Set(track.TrackID, track)
	if track.URL != "" {
		urlIndex.Set(track.URL, track.TrackID)
	}

	if tracks == nil {
		return nil
	}

	doc := trackDoc{CachedTrack: track, UpdatedAt: time.Now().UTC()}
	_, err := tracks.UpdateOne(ctx,
		bson.M{"track_id": track.TrackID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save track %s: %w", track.TrackID, err)
	}
	return nil
}

// GetTrack returns a previously resolved track, preferring the in-memory
// cache over Mongo.
func GetTrack(ctx context.Context, trackID string) (utils.CachedTrack, bool) {
	if trackID == "" {
		return utils.CachedTrack{}, false
	}

	if track, ok := memCache.Get(trackID); ok {
		return track, true
	}

	if tracks == nil {
		return utils.CachedTrack{}, false
	}

	var doc trackDoc
	err := tracks.FindOne(ctx, bson.M{"track_id": trackID}).Decode(&doc)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			gologging.WarnF("mongo lookup for %s: %v", trackID, err)
		}
		return utils.CachedTrack{}, false
	}

	memCache.Set(trackID, doc.CachedTrack)
	return doc.CachedTrack, true
}

// GetTrackByURL returns a previously resolved track by its canonical URL.
func GetTrackByURL(ctx context.Context, rawURL string) (utils.CachedTrack, bool) {
	if rawURL == "" {
		return utils.CachedTrack{}, false
	}

	if id, ok := urlIndex.Get(rawURL); ok {
		if track, ok := memCache.Get(id); ok {
			return track, true
		}
	}

	if tracks == nil {
		return utils.CachedTrack{}, false
	}

	var doc trackDoc
	err := tracks.FindOne(ctx, bson.M{"url": rawURL}).Decode(&doc)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			gologging.WarnF("mongo lookup for %s: %v", rawURL, err)
		}
		return utils.CachedTrack{}, false
	}

	memCache.Set(doc.TrackID, doc.CachedTrack)
	urlIndex.Set(rawURL, doc.TrackID)
	return doc.CachedTrack, true
}

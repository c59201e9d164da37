package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	trendingTagsKeyPrefix = "tags:trending:%d"
	profileKeyPrefix      = "profile:%s"
)

const (
	TrendingTagsTTL = 5 * time.Minute
	ProfileTTL      = 5 * time.Minute
)

func TrendingTagsKey(limit int) string {
	return fmt.Sprintf(trendingTagsKeyPrefix, limit)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(profileKeyPrefix, username)
}

// Invalidate deletes a single key, no-op when the cache is disabled.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateTrendingTags drops every cached trending-tags aggregation.
// Called after any post mutation that can change tag counts.
func InvalidateTrendingTags(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "tags:trending:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateProfile drops the cached public profile for a username.
func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

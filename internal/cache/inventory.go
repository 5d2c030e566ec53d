package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	UserStatsKeyPrefix   = "user:%d:stats"
	PostKeyPrefix        = "post:%d"
	CircleKeyPrefix      = "circle:%d"
	CircleListKey        = "circles:all"
	CircleMembersKeyPref = "circle:%d:members"
)

const (
	UserTTL       = 5 * time.Minute
	UserStatsTTL  = 2 * time.Minute
	PostTTL       = 30 * time.Minute
	CircleTTL     = 10 * time.Minute
	CircleListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserStatsKey(userID uint) string {
	return fmt.Sprintf(UserStatsKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func CircleKey(circleID uint) string {
	return fmt.Sprintf(CircleKeyPrefix, circleID)
}

func CircleMembersKey(circleID uint) string {
	return fmt.Sprintf(CircleMembersKeyPref, circleID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserStatsKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateCircle(ctx context.Context, circleID uint) {
	Invalidate(ctx, CircleKey(circleID))
	Invalidate(ctx, CircleMembersKey(circleID))
	Invalidate(ctx, CircleListKey)
}

// Package cache stores rendered report series between tracker changes.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-value cache with prefix invalidation
type Cache interface {
	// Get returns the value for key; ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// UserPrefix is the key prefix shared by every cached report of a user.
func UserPrefix(userID uint) string {
	return fmt.Sprintf("report:%d:", userID)
}

// ReportKey builds the cache key for one report of a user.
func ReportKey(userID uint, kind string, period string) string {
	return UserPrefix(userID) + kind + ":" + period
}

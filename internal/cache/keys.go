package cache

import (
	"context"
	"time"
)

const (
	SubjectKeyPrefix = "user:subject:"
)

const (
	SubjectTTL = 5 * time.Minute
)

// SubjectKey is the cache key of the user resolved from an identity subject.
func SubjectKey(subject string) string {
	return SubjectKeyPrefix + subject
}

// Invalidate drops key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateSubject drops the cached user for subject.
func InvalidateSubject(ctx context.Context, subject string) {
	Invalidate(ctx, SubjectKey(subject))
}

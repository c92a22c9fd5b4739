// Package cache keeps the last successful fetch of the data source for a
// bounded time.
package cache

import "time"

// Entry is a cached value stamped with when it was fetched.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
	TTL       time.Duration
}

// ExpiresAt is the first instant at which the entry is stale.
func (e Entry[T]) ExpiresAt() time.Time {
	return e.FetchedAt.Add(e.TTL)
}

// Expired reports whether now is at or past FetchedAt+TTL.
func (e Entry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}

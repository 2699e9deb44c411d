// Package cacheentry describes the cached artifacts of one search term.
package cacheentry

import "time"

// Entry describes one cache key.
type Entry struct {
	Kind   string
	Key    string
	Cached bool
	// TTL is the remaining lifetime; negative when the key never expires.
	TTL time.Duration
}

// CachedCount returns how many entries exist.
func CachedCount(es []Entry) int {
	n := 0
	for _, e := range es {
		if e.Cached {
			n++
		}
	}
	return n
}

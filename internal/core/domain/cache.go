package domain

import "time"

// CacheEntry describes one (name, version) directory of the filesystem cache.
type CacheEntry struct {
	Name    string
	Version string
	Path    string
	ModTime time.Time
	Size    int64
	Files   int
}

// Download is the result of fetching or probing a URL.
type Download struct {
	Path         string
	ETag         string
	LastModified string
	Size         int64
}

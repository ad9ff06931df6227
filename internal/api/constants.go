package api

// API limits and constants.
const (
	// MaxImportSize caps the body of an import request (10 MB).
	MaxImportSize = 10 << 20
)

// Cache-Control header values.
const (
	CacheOneDay  = "public, max-age=86400"
	CacheNoStore = "no-store"
)

package api

// API limits and constants.
const (
	// MaxUploadSize is the default maximum size for image uploads (10 MiB).
	MaxUploadSize = 10 << 20
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-store"
)

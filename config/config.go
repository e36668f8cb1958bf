// forum/config/config.go
package config

const (
	AppVersion = "1.2.0"

	// Form limits enforced by the presentation layer.
	MaxNameLen    = 100
	MaxContentLen = 8000

	// Avatar upload limits.
	MaxAvatarSize   = 2 * 1024 * 1024 // 2MB
	ThumbnailWidth  = 128
	ThumbnailHeight = 128

	// Authentication attempt throttling (sliding window).
	AuthAttemptWindowSeconds = 10
	AuthAttemptMax           = 4

	// Write rate limiting defaults for the HTTP layer.
	DefaultWriteLimitEvery  = "5s"
	DefaultWriteLimitBurst  = 5
	DefaultWriteLimitPrune  = "1h"
	DefaultWriteLimitExpire = "24h"

	// New accounts start with this footer until they edit their profile.
	DefaultFooter = "I'm new here!"
)

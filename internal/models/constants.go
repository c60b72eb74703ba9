package models

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

const (
	// ReferencePrefix marks externally visible booking references.
	ReferencePrefix = "BK"

	// ReferenceLength is the number of random characters after the prefix.
	ReferenceLength = 10

	// MaxReferenceAttempts bounds the regenerate-on-collision loop.
	MaxReferenceAttempts = 5

	// DefaultNotificationLimit caps the recent-notifications listing.
	DefaultNotificationLimit = 50

	// DefaultSessionTTL is the admin session lifetime in seconds.
	DefaultSessionTTL = 12 * 60 * 60

	// RateLimitRPS and RateLimitBurst are API defaults.
	RateLimitRPS   = 20
	RateLimitBurst = 40
)

// Package domain resolves request identity signals into a durable visitor key
package domain

// IDKind says which signal currently backs a visitor key
type IDKind string

const (
	// KindCookie is a client-issued cookie id, the preferred signal
	KindCookie IDKind = "cookie"
	// KindIP is the fallback when no cookie id exists
	KindIP IDKind = "ip"
)

// Identity is a resolved visitor identity
// Trackable is false when neither signal was usable; callers must
// fail open and allow the operation without tracking
type Identity struct {
	VisitorKey string
	Kind       IDKind
	CookieID   string
	IP         string
	Trackable  bool
}

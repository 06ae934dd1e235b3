package domain

import "strings"

// Resolve turns raw cookie/IP signals into one visitor identity
// cookie wins when present, IP is the fallback, neither means untrackable
func Resolve(cookieID, ip string) Identity {
	cookieID = strings.TrimSpace(cookieID)
	ip = strings.TrimSpace(ip)

	switch {
	case cookieID != "":
		return Identity{
			VisitorKey: cookieID,
			Kind:       KindCookie,
			CookieID:   cookieID,
			IP:         ip,
			Trackable:  true,
		}
	case ip != "":
		return Identity{
			VisitorKey: ip,
			Kind:       KindIP,
			IP:         ip,
			Trackable:  true,
		}
	default:
		return Identity{}
	}
}

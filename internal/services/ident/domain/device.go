package domain

import "regexp"

// DeviceType buckets a client into mobile, tablet, or desktop
type DeviceType string

const (
	// DeviceMobile is a phone class client
	DeviceMobile DeviceType = "mobile"
	// DeviceTablet is a tablet class client
	DeviceTablet DeviceType = "tablet"
	// DeviceDesktop is everything else, and the default
	DeviceDesktop DeviceType = "desktop"
)

var (
	tabletRe     = regexp.MustCompile(`(?i)ipad|tablet|playbook|silk|kindle`)
	androidRe    = regexp.MustCompile(`(?i)android`)
	androidMobRe = regexp.MustCompile(`(?i)android.*mobi`)
	mobileRe     = regexp.MustCompile(`(?i)mobile|iphone|ipod|blackberry|opera mini|iemobile|windows phone`)
)

// DetectDevice buckets a User-Agent string, defaulting to desktop
// tablet is checked before mobile: tablet UAs carry tokens that would
// otherwise match the mobile list, and an Android UA without the Mobi
// token is a tablet by UA convention
func DetectDevice(userAgent string) DeviceType {
	if userAgent == "" {
		return DeviceDesktop
	}
	if tabletRe.MatchString(userAgent) {
		return DeviceTablet
	}
	if androidRe.MatchString(userAgent) && !androidMobRe.MatchString(userAgent) {
		return DeviceTablet
	}
	if mobileRe.MatchString(userAgent) || androidRe.MatchString(userAgent) {
		return DeviceMobile
	}
	return DeviceDesktop
}

package event

import (
	"regexp"
	"strings"
)

// Device types reported in pageview events
const (
	DeviceTablet = "tablet"
	DeviceMobile = "mobile"
	DevicePC     = "pc"
)

var (
	tabletPattern = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)
	mobilePattern = regexp.MustCompile(`Mobile|Android|iP(hone|od)|IEMobile|BlackBerry|Kindle|Silk-Accelerated|(hpw|web)OS|Opera M(obi|ini)`)
)

// DeviceType classifies a user agent as tablet, mobile or pc.
// An Android UA without the "Mobi" marker is a tablet by convention.
func DeviceType(userAgent string) string {
	lower := strings.ToLower(userAgent)
	if tabletPattern.MatchString(userAgent) {
		return DeviceTablet
	}
	if strings.Contains(lower, "android") && !strings.Contains(lower, "mobi") {
		return DeviceTablet
	}
	if mobilePattern.MatchString(userAgent) {
		return DeviceMobile
	}
	return DevicePC
}

// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "0.1-" + runtime.GOOS + "/" + runtime.GOARCH

// StandardGravity is the conventional value of g in m/s².
const StandardGravity = 9.80665

// Canonical sensor labels for two-sided captures.
const (
	LabelLeft  = "LEFT"
	LabelRight = "RIGHT"
)

// Text formats accepted from the user.
const (
	DateLayout = "2006/01/02"
	TimeLayout = "15:04:05"
)

// DefaultRightMarkers are matched case-insensitively against a legacy
// capture's per-group configuration text to find the right-side sensor.
var DefaultRightMarkers = []string{"right", "derech", "droit", "rechts", "destr", "direit", "오른"}

// DefaultDetrend names the baseline removal used when none is configured.
const DefaultDetrend = "median-subtract"

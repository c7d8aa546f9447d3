package telemetry

import "time"

// LivenessWindow is how long a device counts as transmitting after its last
// reading.
const LivenessWindow = 10 * time.Second

// IsActive reports whether a device whose last reading arrived at lastUpdate
// is still transmitting at now. A nil lastUpdate is never active.
//
// A lastUpdate after now yields a negative delta and is reported active.
func IsActive(lastUpdate *time.Time, now time.Time) bool {
	if lastUpdate == nil {
		return false
	}
	return now.Sub(*lastUpdate) < LivenessWindow
}

// Package telemetry holds the per-reading rules behind a bike card:
// liveness, display names, derived speed and value formatting.
//
// Every function here is a pure function of its arguments. Callers pass the
// current time explicitly so liveness can be re-evaluated on each render.
package telemetry

import "time"

// Reading is one immutable telemetry snapshot for a single device, as
// written by the external feed. Nil pointers mean the sensor did not report
// the value.
type Reading struct {
	Device     string     `json:"device,omitempty"`
	LastUpdate *time.Time `json:"last_update,omitempty"`

	InstantSpeed   *float64 `json:"instant_speed,omitempty"`   // km/h
	InstantPower   *float64 `json:"instant_power,omitempty"`   // W
	InstantCadence *float64 `json:"instant_cadence,omitempty"` // rpm

	TotalDistance *float64 `json:"total_distance,omitempty"` // meters
	ElapsedTime   *float64 `json:"elapsed_time,omitempty"`   // seconds

	HeartRate   *int     `json:"heart_rate,omitempty"`   // bpm
	TotalEnergy *float64 `json:"total_energy,omitempty"` // kcal
}

// Package snapshot builds immutable card snapshots from a telemetry reading.
//
// A Card captures everything the renderer needs for one frame: the display
// name, liveness at the given instant, and every metric already formatted.
// Cards are rebuilt on each tick and on each new reading; nothing is cached
// across builds.
package snapshot

import (
	"strconv"
	"time"

	"github.com/daviddao/bikecard_viewer/internal/telemetry"
)

// Metric is one labeled, formatted value on the card.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Card is an immutable, self-contained view of one bike at one instant.
type Card struct {
	Device string `json:"device"`
	Name   string `json:"name"`
	Active bool   `json:"active"`

	// Primary tiles: speed, average speed, power, cadence, distance.
	Primary []Metric `json:"primary"`

	// Secondary row: heart rate, elapsed time and energy, each present only
	// when the sensor reported a non-zero value.
	Secondary []Metric `json:"secondary"`

	// Raw derived average speed; nil when it cannot be computed.
	AvgSpeedKmh *float64 `json:"avg_speed_kmh,omitempty"`

	LastUpdate *time.Time `json:"last_update,omitempty"`

	// Instant the card was evaluated at.
	BuiltAt time.Time `json:"built_at"`
}

// Labels of the primary tiles, in display order.
const (
	LabelSpeed    = "Speed"
	LabelAvgSpeed = "Avg Speed"
	LabelPower    = "Power"
	LabelCadence  = "Cadence"
	LabelDistance = "Distance"

	LabelHeartRate = "Heart Rate"
	LabelElapsed   = "Elapsed"
	LabelEnergy    = "Energy"
)

// Build evaluates r at now. override is the user's display name for the
// device, or "" for the derived default. A nil reading builds an empty,
// inactive card.
func Build(r *telemetry.Reading, override string, now time.Time) *Card {
	if r == nil {
		r = &telemetry.Reading{}
	}

	avg := telemetry.AverageSpeedKmh(r.TotalDistance, r.ElapsedTime)

	primary := []Metric{
		{Label: LabelSpeed, Value: telemetry.FormatValue(r.InstantSpeed, 1, " km/h")},
		{Label: LabelAvgSpeed, Value: telemetry.FormatValue(avg, 1, " km/h")},
		{Label: LabelPower, Value: telemetry.FormatValue(r.InstantPower, 0, " W")},
		{Label: LabelCadence, Value: telemetry.FormatValue(r.InstantCadence, 0, " rpm")},
		{Label: LabelDistance, Value: telemetry.FormatValue(telemetry.DistanceKm(r.TotalDistance), 2, " km")},
	}

	var secondary []Metric
	if r.HeartRate != nil && *r.HeartRate != 0 {
		secondary = append(secondary, Metric{Label: LabelHeartRate, Value: strconv.Itoa(*r.HeartRate), Unit: "bpm"})
	}
	if r.ElapsedTime != nil && *r.ElapsedTime != 0 {
		secondary = append(secondary, Metric{Label: LabelElapsed, Value: telemetry.FormatTime(r.ElapsedTime)})
	}
	if r.TotalEnergy != nil && *r.TotalEnergy != 0 {
		secondary = append(secondary, Metric{Label: LabelEnergy, Value: telemetry.FormatNumber(*r.TotalEnergy), Unit: "kcal"})
	}

	return &Card{
		Device:      r.Device,
		Name:        telemetry.ResolveName(r.Device, override),
		Active:      telemetry.IsActive(r.LastUpdate, now),
		Primary:     primary,
		Secondary:   secondary,
		AvgSpeedKmh: avg,
		LastUpdate:  r.LastUpdate,
		BuiltAt:     now,
	}
}

// Metric returns the primary or secondary metric with the given label.
func (c *Card) Metric(label string) (Metric, bool) {
	for _, m := range c.Primary {
		if m.Label == label {
			return m, true
		}
	}
	for _, m := range c.Secondary {
		if m.Label == label {
			return m, true
		}
	}
	return Metric{}, false
}

package telemetry

// msToKmh converts meters per second to kilometers per hour.
const msToKmh = 3.6

// AverageSpeedKmh derives the average speed in km/h from cumulative
// distance (meters) and elapsed time (seconds). It returns nil when either
// input is missing or no time has elapsed. The result is not rounded.
func AverageSpeedKmh(totalDistance, elapsedTime *float64) *float64 {
	if totalDistance == nil || elapsedTime == nil || *elapsedTime == 0 {
		return nil
	}
	v := (*totalDistance / *elapsedTime) * msToKmh
	return &v
}

// DistanceKm converts a cumulative distance in meters to kilometers for
// display. Missing and zero distances both yield nil.
func DistanceKm(totalDistance *float64) *float64 {
	if totalDistance == nil || *totalDistance == 0 {
		return nil
	}
	v := *totalDistance / 1000
	return &v
}

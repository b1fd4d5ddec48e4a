package location

import "math"

// haversine distance in kilometers
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371.0 // Earth radius in km
	a1 := lat1 * math.Pi / 180
	a2 := lat2 * math.Pi / 180
	da := (lat2 - lat1) * math.Pi / 180
	db := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(da/2)*math.Sin(da/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(db/2)*math.Sin(db/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimateDurationMinutes turns a road distance into a rough travel time
// using an average ground speed. The figure is informational only.
func EstimateDurationMinutes(distanceKM float64) int {
	const avgSpeedKMH = 42.0

	minutes := (distanceKM / avgSpeedKMH) * 60.0
	m := int(math.Ceil(minutes))
	if m < 1 {
		return 1
	}
	return m
}

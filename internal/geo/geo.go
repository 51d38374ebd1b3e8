// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package geo holds the spherical and local-plane geometry used by zone
// membership and close-approach checks.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0

	// KnotsToMetersPerSecond converts speed over ground to SI units.
	KnotsToMetersPerSecond = 1852.0 / 3600.0

	// velocityEpsilon below which two tracks are treated as having no relative motion (m/s squared).
	velocityEpsilon = 1e-9
)

func radians(deg float64) float64 { return deg * math.Pi / 180.0 }

// NormalizeLon wraps a longitude into [-180, 180].
func NormalizeLon(lon float64) float64 {
	return math.Remainder(lon, 360)
}

// DistanceMeters returns the great-circle distance between two points using
// the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := radians(lat1)
	lat2Rad := radians(lat2)
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DistanceKm is DistanceMeters in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return DistanceMeters(lat1, lon1, lat2, lon2) / 1000.0
}

// WithinRadius reports whether (lat, lon) lies inside or on the circle.
func WithinRadius(centerLat, centerLon, radiusMeters, lat, lon float64) bool {
	return DistanceMeters(centerLat, centerLon, lat, lon) <= radiusMeters
}

// Track is a vessel's instantaneous kinematic state.
type Track struct {
	Lat float64
	Lon float64
	SOG float64 // knots
	COG float64 // degrees true
}

// velocity returns the east/north components in m/s.
func (t Track) velocity() (vx, vy float64) {
	speed := t.SOG * KnotsToMetersPerSecond
	c := radians(t.COG)
	return speed * math.Sin(c), speed * math.Cos(c)
}

// ClosestApproach projects both tracks forward in straight lines on a local
// tangent plane centered between them and returns the closest point of
// approach distance in meters and the time until it in seconds.
//
// Diverging tracks (closest approach already passed) report tcpa 0 and the
// current separation as cpa.
func ClosestApproach(a, b Track) (cpaMeters, tcpaSeconds float64) {
	meanLat := radians((a.Lat + b.Lat) / 2)
	px := radians(NormalizeLon(b.Lon-a.Lon)) * math.Cos(meanLat) * EarthRadiusMeters
	py := radians(b.Lat-a.Lat) * EarthRadiusMeters

	avx, avy := a.velocity()
	bvx, bvy := b.velocity()
	wx, wy := bvx-avx, bvy-avy

	w2 := wx*wx + wy*wy
	if w2 < velocityEpsilon {
		return math.Hypot(px, py), 0
	}

	t := -(px*wx + py*wy) / w2
	if t <= 0 {
		return math.Hypot(px, py), 0
	}
	return math.Hypot(px+wx*t, py+wy*t), t
}

// Project dead-reckons a track forward by seconds along its course and
// speed. Negative seconds move it backward.
func Project(t Track, seconds float64) Track {
	if seconds == 0 || t.SOG == 0 {
		return t
	}
	vx, vy := t.velocity()
	cosLat := math.Cos(radians(t.Lat))
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6
	}
	out := t
	out.Lat += (vy * seconds / EarthRadiusMeters) * 180 / math.Pi
	out.Lon = NormalizeLon(out.Lon + (vx*seconds/(EarthRadiusMeters*cosLat))*180/math.Pi)
	return out
}

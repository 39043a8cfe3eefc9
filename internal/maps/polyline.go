// README: Google encoded polyline decoding for directions overview paths.
package maps

import (
	"errors"

	"gosnap/internal/types"
)

// ErrMalformedPolyline reports an encoded polyline that ended mid-value or
// contained bytes outside the encoding alphabet.
var ErrMalformedPolyline = errors.New("malformed polyline")

const (
	polylineOffset    = 63
	polylineContinue  = 0x20
	polylineChunk     = 0x1f
	polylinePrecision = 1e5

	// A 32-bit delta never needs more than 7 five-bit groups.
	maxPolylineShift = 35
)

// DecodePolyline converts a Google encoded polyline into coordinates.
// Malformed input yields the points decoded before the fault.
func DecodePolyline(encoded string) []types.Coordinate {
	points, _ := DecodePolylineChecked(encoded)
	return points
}

// DecodePolylineChecked behaves like DecodePolyline but also reports
// ErrMalformedPolyline when decoding stopped early.
func DecodePolylineChecked(encoded string) ([]types.Coordinate, error) {
	points := make([]types.Coordinate, 0, len(encoded)/4)
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		dLat, next, ok := decodeValue(encoded, index)
		if !ok {
			return points, ErrMalformedPolyline
		}
		dLng, next, ok := decodeValue(encoded, next)
		if !ok {
			return points, ErrMalformedPolyline
		}
		index = next

		lat += dLat
		lng += dLng
		points = append(points, types.Coordinate{
			Lat: float64(lat) / polylinePrecision,
			Lng: float64(lng) / polylinePrecision,
		})
	}
	return points, nil
}

// decodeValue reads one zigzag-encoded delta starting at index.
func decodeValue(encoded string, index int) (delta, next int, ok bool) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) || shift > maxPolylineShift {
			return 0, index, false
		}
		b := int(encoded[index]) - polylineOffset
		if b < 0 || b > 63 {
			return 0, index, false
		}
		index++
		result |= (b & polylineChunk) << shift
		shift += 5
		if b < polylineContinue {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

package maps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosnap/internal/types"
)

// googleVector is the example from Google's polyline algorithm documentation.
const googleVector = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func TestDecodePolyline_GoogleVector(t *testing.T) {
	want := []types.Coordinate{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	got, err := DecodePolylineChecked(googleVector)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].Lat, got[i].Lat, 1e-5, "lat at %d", i)
		assert.InDelta(t, want[i].Lng, got[i].Lng, 1e-5, "lng at %d", i)
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	got, err := DecodePolylineChecked("")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, DecodePolyline(""))
}

func TestDecodePolyline_Idempotent(t *testing.T) {
	first := DecodePolyline(googleVector)
	second := DecodePolyline(googleVector)
	assert.Equal(t, first, second)
}

func TestDecodePolyline_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
	}{
		{name: "truncated inside first latitude", input: "_p~", wantLen: 0},
		{name: "latitude without longitude", input: "_p~iF", wantLen: 0},
		{name: "truncated after first point", input: googleVector[:12], wantLen: 1},
		{name: "truncated before last longitude ends", input: googleVector[:len(googleVector)-1], wantLen: 2},
		{name: "byte below alphabet", input: "_p~iF~ps|U !", wantLen: 1},
		{name: "byte above alphabet", input: "_p~iF~ps|U\x7f", wantLen: 1},
		{name: "endless continuation", input: "~~~~~~~~~~~~~~~~~~~~", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []types.Coordinate
			var err error
			require.NotPanics(t, func() {
				got, err = DecodePolylineChecked(tt.input)
			})
			assert.ErrorIs(t, err, ErrMalformedPolyline)
			assert.Len(t, got, tt.wantLen)
			assert.Len(t, DecodePolyline(tt.input), tt.wantLen)
		})
	}
}

func TestDecodePolyline_PrefixMatchesFullDecode(t *testing.T) {
	full := DecodePolyline(googleVector)
	prefix := DecodePolyline(googleVector[:len(googleVector)-3])
	require.Len(t, prefix, 2)
	assert.Equal(t, full[:2], prefix)
}

func TestPathLengthKm(t *testing.T) {
	assert.Zero(t, PathLengthKm(nil))
	assert.Zero(t, PathLengthKm([]types.Coordinate{{Lat: -1.95, Lng: 30.1}}))

	// Kimironko Market to Amahoro Stadium is roughly 2km as the crow flies.
	path := []types.Coordinate{
		{Lat: -1.9496, Lng: 30.1263},
		{Lat: -1.9530, Lng: 30.1085},
	}
	got := PathLengthKm(path)
	assert.InDelta(t, 2.0, got, 0.3)

	back := PathLengthKm([]types.Coordinate{path[1], path[0]})
	assert.True(t, math.Abs(got-back) < 1e-9, "path length should be symmetric")
}

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Coordinate
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Coordinate{Lat: -1.9686, Lng: 30.1395},
			b:         types.Coordinate{Lat: -1.9686, Lng: 30.1395},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         types.Coordinate{Lat: 40.7128, Lng: -74.0060},
			b:         types.Coordinate{Lat: 34.0522, Lng: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

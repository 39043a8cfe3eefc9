package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"gosnap/internal/types"
)

const (
	geocodePath      = "/maps/api/geocode/json"
	directionsPath   = "/maps/api/directions/json"
	autocompletePath = "/maps/api/place/autocomplete/json"
)

// fakeProvider serves canned JSON bodies per API path and counts hits.
type fakeProvider struct {
	bodies map[string][]string
	hits   map[string]*atomic.Int32

	mu   sync.Mutex
	last map[string]*http.Request
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		bodies: map[string][]string{},
		hits: map[string]*atomic.Int32{
			geocodePath:      {},
			directionsPath:   {},
			autocompletePath: {},
		},
		last: map[string]*http.Request{},
	}
}

// respond queues bodies for path; the last body repeats once the queue is drained.
func (f *fakeProvider) respond(path string, bodies ...string) *fakeProvider {
	f.bodies[path] = bodies
	return f
}

func (f *fakeProvider) count(path string) int {
	return int(f.hits[path].Load())
}

func (f *fakeProvider) lastRequest(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last[path]
}

func (f *fakeProvider) start(t *testing.T) *maps.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter, ok := f.hits[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		n := int(counter.Add(1))
		f.mu.Lock()
		f.last[r.URL.Path] = r
		f.mu.Unlock()

		bodies := f.bodies[r.URL.Path]
		if len(bodies) == 0 {
			http.Error(w, "no canned body", http.StatusInternalServerError)
			return
		}
		body := bodies[len(bodies)-1]
		if n <= len(bodies) {
			body = bodies[n-1]
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	return client
}

const (
	geocodeOK   = `{"status":"OK","results":[{"geometry":{"location":{"lat":-1.9441,"lng":30.0619}}}]}`
	geocodeZero = `{"status":"ZERO_RESULTS","results":[]}`

	geocodeDenied = `{"status":"REQUEST_DENIED","error_message":"This API project is not authorized to use this API.","results":[]}`

	directionsOK = `{"status":"OK","routes":[{"overview_polyline":{"points":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"},` +
		`"legs":[{"distance":{"text":"5.3 km","value":5300},"duration":{"text":"12 mins","value":720}}]}]}`

	directionsDenied = `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","routes":[]}`
	directionsZero   = `{"status":"ZERO_RESULTS","routes":[]}`
)

func newTestRouteService(client *maps.Client, attempts int) *RouteService {
	return NewRouteService(client, "", RetryPolicy{Attempts: attempts, Delay: time.Millisecond}, zap.NewNop())
}

func TestGeocode_Success(t *testing.T) {
	fp := newFakeProvider().respond(geocodePath, geocodeOK)
	svc := newTestRouteService(fp.start(t), 2)

	got, err := svc.Geocode(context.Background(), "Kigali Convention Centre")
	require.NoError(t, err)
	assert.Equal(t, types.Coordinate{Lat: -1.9441, Lng: 30.0619}, got)

	req := fp.lastRequest(geocodePath)
	require.NotNil(t, req)
	assert.Equal(t, "Kigali Convention Centre", req.URL.Query().Get("address"))
	assert.Equal(t, "test-key", req.URL.Query().Get("key"))
}

func TestGeocode_ZeroResults(t *testing.T) {
	fp := newFakeProvider().respond(geocodePath, geocodeZero)
	svc := newTestRouteService(fp.start(t), 2)

	_, err := svc.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocode_ProviderStatus(t *testing.T) {
	fp := newFakeProvider().respond(geocodePath, geocodeDenied)
	svc := newTestRouteService(fp.start(t), 2)

	_, err := svc.Geocode(context.Background(), "Kigali Convention Centre")
	assert.ErrorIs(t, err, ErrProviderStatus)
	assert.NotErrorIs(t, err, ErrNoResults)
	assert.Equal(t, 1, fp.count(geocodePath))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"zero results", errors.New("maps: ZERO_RESULTS - "), ErrNoResults},
		{"not found", errors.New("maps: NOT_FOUND - "), ErrNoResults},
		{"denied", errors.New("maps: REQUEST_DENIED - The provided API key is invalid."), ErrProviderStatus},
		{"status word in message", errors.New("maps: INVALID_REQUEST - origin NOT_FOUND or ZERO_RESULTS"), ErrProviderStatus},
		{"status the list does not know", errors.New("maps: BILLING_DISABLED - enable billing"), ErrProviderStatus},
		{"status word outside prefix", errors.New("decode: unexpected ZERO_RESULTS token"), ErrTransport},
		{"url error", &url.Error{Op: "Get", URL: "http://maps", Err: errors.New("connection refused")}, ErrTransport},
		{"deadline", context.DeadlineExceeded, ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("classify(%q) = %v, want %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classify(%q) dropped the original error", tt.err)
			}
		})
	}
	if classify(nil) != nil {
		t.Errorf("classify(nil) should be nil")
	}
}

func TestGeocode_BlankAddressSkipsRequest(t *testing.T) {
	fp := newFakeProvider().respond(geocodePath, geocodeOK)
	svc := newTestRouteService(fp.start(t), 2)

	_, err := svc.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Zero(t, fp.count(geocodePath))
}

func TestRoute_Success(t *testing.T) {
	fp := newFakeProvider().respond(directionsPath, directionsOK)
	svc := newTestRouteService(fp.start(t), 2)

	origin := types.Coordinate{Lat: -1.9496, Lng: 30.1263}
	dest := types.Coordinate{Lat: -1.9530, Lng: 30.1085}
	got, err := svc.Route(context.Background(), origin, dest)
	require.NoError(t, err)
	assert.Equal(t, 5300, got.DistanceMeters)
	assert.Equal(t, googleVector, got.EncodedPolyline)
	assert.Equal(t, 1, fp.count(directionsPath))

	q := fp.lastRequest(directionsPath).URL.Query()
	assert.Equal(t, origin.String(), q.Get("origin"))
	assert.Equal(t, dest.String(), q.Get("destination"))
}

func TestRoute_RetriesTransientFailureOnce(t *testing.T) {
	fp := newFakeProvider().respond(directionsPath, directionsDenied, directionsOK)
	svc := newTestRouteService(fp.start(t), 2)

	got, err := svc.Route(context.Background(), types.Coordinate{}, types.Coordinate{Lat: 1})
	require.NoError(t, err)
	assert.Equal(t, 5300, got.DistanceMeters)
	assert.Equal(t, 2, fp.count(directionsPath))
}

func TestRoute_GivesUpAfterTwoAttempts(t *testing.T) {
	fp := newFakeProvider().respond(directionsPath, directionsDenied)
	svc := newTestRouteService(fp.start(t), 2)

	_, err := svc.Route(context.Background(), types.Coordinate{}, types.Coordinate{Lat: 1})
	assert.ErrorIs(t, err, ErrProviderStatus)
	assert.Equal(t, 2, fp.count(directionsPath))
}

func TestRoute_ZeroResultsIsNotRetried(t *testing.T) {
	fp := newFakeProvider().respond(directionsPath, directionsZero)
	svc := newTestRouteService(fp.start(t), 2)

	_, err := svc.Route(context.Background(), types.Coordinate{}, types.Coordinate{Lat: 1})
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, 1, fp.count(directionsPath))
}

func TestRoute_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient("test-key", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)
	srv.Close()

	svc := newTestRouteService(client, 2)
	_, err = svc.Route(context.Background(), types.Coordinate{}, types.Coordinate{Lat: 1})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNewRouteService_Defaults(t *testing.T) {
	svc := NewRouteService(nil, "", RetryPolicy{}, nil)
	assert.Equal(t, DefaultRegion, svc.region)
	assert.Equal(t, 1, svc.retry.Attempts)
	assert.NotNil(t, svc.log)
}

func TestAutocomplete(t *testing.T) {
	fp := newFakeProvider().respond(autocompletePath,
		`{"status":"OK","predictions":[{"place_id":"abc","description":"Kigali Heights, KG 7 Ave, Kigali, Rwanda"}]}`)
	svc := NewPlacesService(fp.start(t), "")

	got, err := svc.Autocomplete(context.Background(), "Kigali Hei")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Prediction{PlaceID: "abc", Description: "Kigali Heights, KG 7 Ave, Kigali, Rwanda"}, got[0])
	assert.Equal(t, "country:rw", fp.lastRequest(autocompletePath).URL.Query().Get("components"))
}

func TestAutocomplete_BlankAndZero(t *testing.T) {
	fp := newFakeProvider().respond(autocompletePath, `{"status":"ZERO_RESULTS","predictions":[]}`)
	svc := NewPlacesService(fp.start(t), "rw")

	got, err := svc.Autocomplete(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, fp.count(autocompletePath))

	got, err = svc.Autocomplete(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

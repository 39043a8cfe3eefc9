// README: Google Maps client construction and provider error classification.
package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"googlemaps.github.io/maps"
)

// DefaultRegion biases every lookup towards Rwanda.
const DefaultRegion = "rw"

var (
	ErrNoResults      = errors.New("maps: no results")
	ErrProviderStatus = errors.New("maps: provider status not ok")
	ErrTransport      = errors.New("maps: transport failure")
)

// providerStatuses are the non-OK statuses the Google web services report
// that are not plain "nothing found".
var providerStatuses = []string{
	"OVER_QUERY_LIMIT",
	"OVER_DAILY_LIMIT",
	"REQUEST_DENIED",
	"INVALID_REQUEST",
	"MAX_WAYPOINTS_EXCEEDED",
	"MAX_ROUTE_LENGTH_EXCEEDED",
	"UNKNOWN_ERROR",
}

// NewClient builds a Google Maps web-services client whose HTTP transport is
// traced with OpenTelemetry. Extra options (e.g. maps.WithBaseURL in tests)
// are applied after the defaults.
func NewClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	all := append([]maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(httpClient),
	}, opts...)

	client, err := maps.NewClient(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// classify maps an error returned by the maps library onto one of the
// package sentinels while keeping the original error in the chain.
// Status errors are recognised by their leading status token, never by
// words that may appear in the provider's free-text error_message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	status := providerStatus(err)
	switch {
	case status == "ZERO_RESULTS" || status == "NOT_FOUND":
		return fmt.Errorf("%w: %w", ErrNoResults, err)
	case status != "":
		return fmt.Errorf("%w: %w", ErrProviderStatus, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// providerStatus returns STATUS from the library's "maps: STATUS - message"
// errors, or "" when err is not a status error.
func providerStatus(err error) string {
	rest, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return ""
	}
	status, _, _ := strings.Cut(rest, " - ")
	status = strings.TrimSpace(status)
	if status == "ZERO_RESULTS" || status == "NOT_FOUND" || slices.Contains(providerStatuses, status) {
		return status
	}
	if status != "" && strings.Trim(status, "ABCDEFGHIJKLMNOPQRSTUVWXYZ_") == "" {
		// A status the list does not know yet.
		return status
	}
	return ""
}

// README: CLI that prints one route estimate and its per-tier fares; flags default from env.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gosnap/internal/config"
	"gosnap/internal/infra"
	"gosnap/internal/maps"
	"gosnap/internal/modules/estimate"
	"gosnap/internal/modules/pricing"
	"gosnap/internal/types"
)

type options struct {
	Kind        string
	Pickup      string
	Destination string
	Timeout     time.Duration
	JSON        bool
	Verbose     bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	kind, ok := estimate.ParseKind(opts.Kind)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown kind %q (want city or airport)\n", opts.Kind)
		os.Exit(2)
	}

	log := zap.NewNop()
	if opts.Verbose {
		if log, err = infra.NewLogger(true, "gosnap-estimate"); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer func() { _ = log.Sync() }()

	client, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	routeSvc := maps.NewRouteService(client, cfg.Maps.Region, maps.RetryPolicy{
		Attempts: cfg.Route.RetryAttempts,
		Delay:    cfg.Route.RetryDelay,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	flow := estimate.NewFlow(kind, estimate.NewEstimator(routeSvc, routeSvc, log), pricing.NewService(nil, log), log)
	snap, _ := flow.Request(ctx, queryFor(kind, opts.Pickup, opts.Destination))

	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(snap)
		return
	}
	printSnapshot(os.Stdout, snap)
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.Kind, "kind", envOrDefault("GOSNAP_ESTIMATE_KIND", "city"), "Screen kind: city or airport")
	flag.StringVar(&o.Pickup, "pickup", envOrDefault("GOSNAP_ESTIMATE_PICKUP", ""), "Pickup address or \"lat,lng\" (empty uses the screen default)")
	flag.StringVar(&o.Destination, "destination", envOrDefault("GOSNAP_ESTIMATE_DESTINATION", ""), "Destination address or \"lat,lng\" (empty uses the screen default)")
	flag.DurationVar(&o.Timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.BoolVar(&o.JSON, "json", false, "Print the snapshot as JSON")
	flag.BoolVar(&o.Verbose, "v", false, "Log provider calls and fallbacks to stderr")
	flag.Parse()
	return o
}

// queryFor builds the estimate query; a blank pickup or destination is the
// screen's default coordinate, so it is not reported as a fallback.
func queryFor(kind estimate.Kind, pickup, destination string) estimate.Query {
	defPickup, defDestination := kind.Defaults()
	return estimate.Query{
		Pickup:      endpointOrDefault(pickup, defPickup),
		Destination: endpointOrDefault(destination, defDestination),
	}
}

func endpointOrDefault(s string, def types.Coordinate) estimate.Endpoint {
	if strings.TrimSpace(s) == "" {
		return estimate.CoordinateEndpoint(def)
	}
	return parseEndpoint(s)
}

// parseEndpoint treats "lat,lng" as a coordinate and anything else as an address.
func parseEndpoint(s string) estimate.Endpoint {
	s = strings.TrimSpace(s)
	latStr, lngStr, found := strings.Cut(s, ",")
	if found {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
		if errLat == nil && errLng == nil {
			return estimate.CoordinateEndpoint(types.Coordinate{Lat: lat, Lng: lng})
		}
	}
	return estimate.AddressEndpoint(s)
}

func printSnapshot(w io.Writer, snap estimate.Snapshot) {
	est := snap.Estimate
	if est == nil {
		fmt.Fprintln(w, "no estimate")
		return
	}
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "From:     %s%s\n", est.Origin, fallbackNote(est.OriginFallback))
	fmt.Fprintf(w, "To:       %s%s\n", est.Destination, fallbackNote(est.DestinationFallback))
	fmt.Fprintf(w, "Distance: %.2f km%s\n", est.DistanceKm, fallbackNote(est.RouteFallback))
	fmt.Fprintf(w, "ETA:      %d min\n\n", est.ETAMinutes)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tRATE/KM\tFARE")
	for _, q := range snap.Quotes {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\n", q.Tier.Name, p.Sprintf("%d", q.Tier.RatePerKm), q.Price.Currency, p.Sprintf("%d", q.Price.Amount))
	}
	_ = tw.Flush()
}

func fallbackNote(fallback bool) string {
	if fallback {
		return " (fallback)"
	}
	return ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

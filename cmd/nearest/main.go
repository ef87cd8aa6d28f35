// Command nearest prints the places of a catalog file nearest to a location.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/logger"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/ranking"
	"github.com/UnknownOlympus/wayfarer/internal/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

type options struct {
	catalogPath string
	facetsPath  string
	latitude    float64
	longitude   float64
	top         int
	provider    string
	routingURL  string
	apiKey      string
	delay       time.Duration
	timeout     time.Duration
	categories  []string
	budgets     []string
	keepOrder   bool
	env         string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "nearest:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("nearest", pflag.ContinueOnError)
	flags.StringVarP(&opts.catalogPath, "catalog", "c", "data.json", "catalog JSON file or http(s) URL")
	flags.StringVar(&opts.facetsPath, "facets", "", "facets table file (built-in table when empty)")
	flags.Float64Var(&opts.latitude, "lat", 0, "user latitude")
	flags.Float64Var(&opts.longitude, "lon", 0, "user longitude")
	flags.IntVarP(&opts.top, "top", "n", ranking.DefaultTopN, "number of places to print")
	flags.StringVarP(&opts.provider, "provider", "p", string(routing.ProviderTypeOSRM), "routing provider: osrm or google")
	flags.StringVar(&opts.routingURL, "routing-url", "", "OSRM base URL")
	flags.StringVar(&opts.apiKey, "api-key", os.Getenv("WAYFARER_ROUTING_KEY"), "Google Maps API key")
	flags.DurationVar(&opts.delay, "delay", ranking.DefaultRefineDelay, "pause between routing requests")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "routing request timeout")
	flags.StringSliceVarP(&opts.categories, "type", "t", nil, "only places of these types")
	flags.StringSliceVarP(&opts.budgets, "budget", "b", nil, "only places within these budgets, as min-max")
	flags.BoolVar(&opts.keepOrder, "keep-approximate-order", false, "do not re-sort by road distance")
	flags.StringVar(&opts.env, "log-env", "", "logging environment: local, development or production")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if !flags.Changed("lat") || !flags.Changed("lon") {
		return nil, ranking.ErrLocationUnavailable
	}

	return opts, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	log := logger.New(os.Stderr, opts.env)

	var src catalog.Source = catalog.NewFileSource(opts.catalogPath)
	if strings.HasPrefix(opts.catalogPath, "http://") || strings.HasPrefix(opts.catalogPath, "https://") {
		src = catalog.NewHTTPSource(opts.catalogPath, opts.timeout)
	}

	cat, err := catalog.Load(ctx, log, src)
	if err != nil {
		return err
	}

	facets, err := catalog.LoadFacets(opts.facetsPath)
	if err != nil {
		return err
	}

	predicate := models.FilterPredicate{Categories: opts.categories}
	for _, budget := range opts.budgets {
		r, errRange := parseRange(budget)
		if errRange != nil {
			return errRange
		}
		predicate.Prices = append(predicate.Prices, r)
	}

	provider, err := routing.NewProvider(routing.ProviderConfig{
		Type:    routing.ProviderType(opts.provider),
		BaseURL: opts.routingURL,
		APIKey:  opts.apiKey,
		Timeout: opts.timeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	pipeline := ranking.NewPipeline(log, provider, ranking.NewQueue(opts.delay),
		metrics.NewMetrics(prometheus.NewRegistry()), ranking.Options{
			TopN:                     opts.top,
			ProviderName:             opts.provider,
			PreserveApproximateOrder: opts.keepOrder,
		})

	candidates := catalog.FilterByPredicate(cat.Places(), predicate, facets)
	origin := &models.Coordinates{Latitude: opts.latitude, Longitude: opts.longitude}
	places, err := pipeline.RankNearest(ctx, candidates, origin, opts.top)
	if err != nil {
		return err
	}

	return printPlaces(out, places)
}

func parseRange(value string) (models.Range, error) {
	lower, upper, _ := strings.Cut(value, "-")
	minValue, errMin := strconv.ParseFloat(strings.TrimSpace(lower), 64)
	maxValue, errMax := strconv.ParseFloat(strings.TrimSpace(upper), 64)
	if errMin != nil || errMax != nil || minValue > maxValue {
		return models.Range{}, fmt.Errorf("budget must look like min-max, got %q", value)
	}

	return models.Range{Label: value, Min: minValue, Max: maxValue}, nil
}

func printPlaces(out io.Writer, places []models.Place) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tDISTANCE\tPRECISION\tFEE")
	for idx, place := range places {
		fee := "-"
		if place.Fee != nil {
			fee = fmt.Sprintf("%.0f", *place.Fee)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f km\t%s\t%s\n",
			idx+1, place.Name, place.Distance.Kilometers, place.Distance.Precision, fee)
	}

	return tw.Flush()
}

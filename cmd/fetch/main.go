// Command fetch prints the normalized statistics for one platform handle.
//
// Usage:
//
//	fetch -platform codeforces tourist
//	fetch -platform leetcode -timeout 20s someone
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/infrastructure"
	"github.com/algotrack/backend/internal/platform"
	"github.com/algotrack/backend/internal/service"
)

func main() {
	platformID := flag.String("platform", "", "platform to query (leetcode, codeforces, codechef, geeksforgeeks, hackerrank, atcoder)")
	timeout := flag.Duration("timeout", 0, "per-request timeout (default from PLATFORM_FETCH_TIMEOUT_SECONDS)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *platformID == "" || flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fetch -platform <id> [options] <username>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(2)
	}
	username := flag.Arg(0)

	level := "warn"
	if *debug {
		level = "debug"
	}
	logger, err := infrastructure.NewLogger("development", level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	config := infrastructure.LoadConfig()
	if *timeout > 0 {
		config.Platforms.FetchTimeout = *timeout
	}

	metrics, err := infrastructure.NewMetrics(noop.NewMeterProvider().Meter("fetch"))
	if err != nil {
		logger.Fatal("Failed to create metrics", zap.Error(err))
	}

	adapters := platform.NewAdapters(config.Platforms, &http.Client{}, logger)
	platforms := service.NewPlatformService(adapters, tracenoop.NewTracerProvider().Tracer("fetch"), metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), config.Platforms.FetchTimeout*4+5*time.Second)
	defer cancel()

	stats := platforms.FetchUserData(ctx, *platformID, username)
	if stats == nil {
		fmt.Fprintf(os.Stderr, "No data returned for %s on %s\n", username, *platformID)
		os.Exit(1) //nolint:gocritic // deferred sync is best effort
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		os.Exit(1)
	}
}

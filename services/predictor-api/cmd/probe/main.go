// Prediction probe with per-second outbound request throttling.
// - Concurrency is controlled by a fixed worker pool (workers)
// - Throughput is controlled by an RPS limiter (token bucket)
// - A share of requests is deliberately invalid and must be rejected with 422
//
// Example:
//
//	go run ./services/predictor-api/cmd/probe \
//	  -requests=5000 \
//	  -workers=50 \
//	  -rps=500 \
//	  -invalidRatio=0.1 \
//	  -apiUrl=http://localhost:8080
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	noOfRequests    = flag.Int("requests", 100, "Total number of prediction requests")
	workers         = flag.Int("workers", 10, "Max in-flight HTTP requests (worker pool size)")
	rps             = flag.Int("rps", 100, "Global requests-per-second limit for POST /predict")
	rpsBurst        = flag.Int("rpsBurst", 0, "Burst size for the limiter (0 => equals rps)")
	invalidRatio    = flag.Float64("invalidRatio", 0.1, "Share of requests sent with an out-of-range field")
	seed            = flag.Int64("seed", 1, "Seed for the request generator")
	apiURL          = flag.String("apiUrl", "http://localhost:8080", "Prediction API base URL")
	clientTimeoutMs = flag.Int("httpClientTimeoutMs", 2000, "Total HTTP client timeout (ms)")
	headerTimeoutMs = flag.Int("httpResponseHeaderTimeoutMs", 1000, "Response header timeout (ms)")
)

func main() {
	flag.Parse()

	pkg.InitLogger()
	logger := pkg.Logger
	defer logger.Sync()

	if err := validateFlags(*noOfRequests, *workers, *rps, *invalidRatio); err != nil {
		logger.Fatal("invalid_flags", zap.Error(err))
	}
	burst := *rpsBurst
	if burst <= 0 {
		burst = *rps
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p := &Prober{
		apiURL:       *apiURL,
		workers:      *workers,
		invalidRatio: *invalidRatio,
		seed:         *seed,
		limiter:      rate.NewLimiter(rate.Limit(*rps), burst),
		httpClient: utils.NewHTTPClient(
			utils.WithClientTimeout(time.Duration(*clientTimeoutMs)*time.Millisecond),
			utils.WithResponseHeaderTimeout(time.Duration(*headerTimeoutMs)*time.Millisecond),
			utils.WithMaxConnsPerHost(*workers),
		),
		logger: logger,
	}

	start := time.Now()
	logger.Info("start_probing",
		zap.Int("requests", *noOfRequests),
		zap.Int("workers", *workers),
		zap.Int("rps", *rps),
		zap.Int("burst", burst),
	)

	stats := p.Run(ctx, *noOfRequests)
	logger.Info("probing_completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int64("sent", stats.Sent),
		zap.Int64("success", stats.OK),
		zap.Int64("rejected", stats.Rejected),
		zap.Int64("failed", stats.Failed),
	)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func validateFlags(requests, workers, rps int, invalidRatio float64) error {
	switch {
	case requests <= 0:
		return errors.New("requests must be positive")
	case workers <= 0:
		return errors.New("workers must be positive")
	case rps <= 0:
		return errors.New("rps must be positive")
	case invalidRatio < 0 || invalidRatio > 1:
		return errors.New("invalidRatio must be within [0, 1]")
	}
	return nil
}

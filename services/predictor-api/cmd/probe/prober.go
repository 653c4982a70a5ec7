package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/views"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type job struct {
	req     views.PredictionRequest
	invalid bool
}

// Stats counts probe outcomes. Rejected is an invalid request answered with 422, which is a pass.
type Stats struct {
	Sent     int64
	OK       int64
	Rejected int64
	Failed   int64
}

type Prober struct {
	apiURL       string
	workers      int
	invalidRatio float64
	seed         int64

	limiter    *rate.Limiter
	httpClient *http.Client
	logger     *zap.Logger

	sent     atomic.Int64
	ok       atomic.Int64
	rejected atomic.Int64
	fail     atomic.Int64
}

// Run sends total requests through the worker pool and blocks until every worker has drained.
func (p *Prober) Run(ctx context.Context, total int) Stats {
	jobs := make(chan job, min(total, 1000))

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				// throttle by RPS before sending the request
				if err := p.limiter.Wait(ctx); err != nil {
					p.logger.Warn("limiter_wait_interrupted", zap.Error(err))
					return
				}
				p.send(ctx, j)
			}
		}()
	}

	// the generator is only touched by this goroutine
	gen := rand.New(rand.NewSource(p.seed))
enqueue:
	for i := 0; i < total; i++ {
		j := randomJob(gen, p.invalidRatio)
		select {
		case <-ctx.Done():
			break enqueue
		case jobs <- j:
		}
	}
	close(jobs)
	wg.Wait()

	return Stats{Sent: p.sent.Load(), OK: p.ok.Load(), Rejected: p.rejected.Load(), Failed: p.fail.Load()}
}

func randomJob(gen *rand.Rand, invalidRatio float64) job {
	req := views.PredictionRequest{
		ExtSource3:             gen.Float64(),
		ExtSource2:             gen.Float64(),
		FlagPhone:              gen.Intn(2),
		RegCityNotWorkCity:     gen.Intn(2),
		RegionRatingClient:     1 + gen.Intn(3),
		AmtReqCreditBureauYear: float64(gen.Intn(10)),
	}
	if gen.Float64() < invalidRatio {
		req.RegionRatingClient = 4 + gen.Intn(3)
		return job{req: req, invalid: true}
	}
	return job{req: req}
}

func (p *Prober) send(ctx context.Context, j job) {
	start := time.Now()
	p.sent.Add(1)

	body, _ := json.Marshal(j.req)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL+"/predict", bytes.NewReader(body))
	if err != nil {
		p.fail.Add(1)
		p.logger.Error("build_request_failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pkg.HeaderTraceId, uuid.New().String())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.fail.Add(1)
		p.logger.Error("api_call_failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	traceID := resp.Header.Get(pkg.HeaderTraceId)
	lat := time.Since(start)

	if j.invalid {
		if resp.StatusCode != http.StatusUnprocessableEntity {
			p.fail.Add(1)
			p.logger.Error("invalid_request_accepted", zap.String(pkg.TraceId, traceID), zap.Int("status_code", resp.StatusCode))
			return
		}
		p.rejected.Add(1)
		return
	}

	if resp.StatusCode != http.StatusOK {
		p.fail.Add(1)
		p.logger.Error("api_call_failed",
			zap.String(pkg.TraceId, traceID),
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("latency", lat),
		)
		return
	}

	var out views.PredictionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		p.fail.Add(1)
		p.logger.Error("decode_response_failed", zap.String(pkg.TraceId, traceID), zap.Error(err))
		return
	}
	if err := checkResult(out); err != nil {
		p.fail.Add(1)
		p.logger.Error("unexpected_prediction", zap.String(pkg.TraceId, traceID), zap.Error(err))
		return
	}

	p.ok.Add(1)
	p.logger.Debug("api_call_completed",
		zap.String(pkg.TraceId, traceID),
		zap.Int("prediction", out.Prediction),
		zap.Float64("probability_of_default", out.ProbabilityOfDefault),
		zap.Duration("latency", lat),
	)
}

func checkResult(out views.PredictionResult) error {
	if out.Prediction != 0 && out.Prediction != 1 {
		return fmt.Errorf("prediction %d is not a class label", out.Prediction)
	}
	if out.ProbabilityOfDefault < 0 || out.ProbabilityOfDefault > 1 {
		return fmt.Errorf("probability %v outside [0, 1]", out.ProbabilityOfDefault)
	}
	return nil
}

// Copyright 2025 go-pstl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ajroetker/go-pstl/pstl"
	"github.com/ajroetker/go-pstl/pstl/device"
	"github.com/ajroetker/go-pstl/pstl/ranges"
)

// result is the outcome of one algorithm under one policy.
type result struct {
	Algorithm string
	Policy    string
	Backend   string
	Best      time.Duration
	Mean      time.Duration
	Digest    uint64
	Match     bool
	Err       error
}

// run executes every selected algorithm under every selected policy and writes
// a report to w.
func run(ctx context.Context, w io.Writer, cfg Config) error {
	logger, err := newLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	pstl.SetLogger(logger)
	defer pstl.SetLogger(nil)

	if cfg.GrainSize > 0 {
		prev := pstl.SetGrainSize(cfg.GrainSize)
		defer pstl.SetGrainSize(prev)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	reg := prometheus.NewRegistry()
	if err := pstl.RegisterMetrics(reg); err != nil {
		return fmt.Errorf("register dispatch metrics: %w", err)
	}
	if err := device.RegisterMetrics(reg); err != nil {
		return fmt.Errorf("register device metrics: %w", err)
	}

	q := device.NewQueue(device.WithComputeUnits(cfg.ComputeUnits), device.WithName("pstlbench"))
	defer func() {
		if err := q.Close(); err != nil {
			logger.Error("closing device queue", zap.Error(err))
		}
	}()

	logger.Info("starting benchmark",
		zap.Int("size", cfg.Size),
		zap.Strings("policies", cfg.Policies),
		zap.Strings("algorithms", cfg.Algorithms),
		zap.Int("workers", pstl.Workers()),
		zap.String("vector", pstl.VectorName()),
		zap.String("device", q.Info().Name))

	input := randomInput(cfg.Size, cfg.Seed)
	var results []result
	for _, name := range cfg.Algorithms {
		b, _ := lookupBenchmark(name)
		// The sequential run is the reference for every other policy.
		ref, err := measure(ctx, b, pstl.Seq, hostWrap, input, 1)
		if err != nil {
			return err
		}
		for _, policy := range cfg.Policies {
			p, wrap := policyFor(policy, q, cfg)
			res, err := measure(ctx, b, p, wrap, input, cfg.Repeat)
			if err != nil {
				return err
			}
			res.Match = res.Err == nil && res.Digest == ref.Digest
			if res.Err != nil {
				logger.Warn("algorithm failed",
					zap.String("algorithm", b.name), zap.String("policy", policy), zap.Error(res.Err))
			} else if !res.Match {
				logger.Error("result differs from the sequential run",
					zap.String("algorithm", b.name), zap.String("policy", policy))
			}
			results = append(results, res)
		}
	}

	if err := q.Wait(); err != nil {
		logger.Warn("device queue reported an asynchronous error", zap.Error(err))
	}
	if err := report(w, results); err != nil {
		return err
	}
	if cfg.MetricsOut != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	failed := lo.CountBy(results, func(r result) bool { return !r.Match })
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed or differ from the sequential result", failed, len(results))
	}
	return nil
}

func hostWrap(data []int64) pstl.Mutable[int64] {
	return ranges.Of(data)
}

// policyFor returns the policy named name and the range kind it runs on.
func policyFor(name string, q *device.Queue, cfg Config) (pstl.Policy, wrapFunc) {
	switch name {
	case "unseq":
		return pstl.Unseq, hostWrap
	case "par":
		return pstl.Par, hostWrap
	case "par_unseq":
		return pstl.ParUnseq, hostWrap
	case "offload":
		p := pstl.NewDevicePolicy(q, pstl.WithKernelName(pstl.UniqueKernelName("pstlbench")))
		if cfg.Memory == "buffer" {
			return p, func(data []int64) pstl.Mutable[int64] { return device.NewBuffer(q, data, cfg.Segment) }
		}
		return p, func(data []int64) pstl.Mutable[int64] { return device.SharedFrom(q, data) }
	default:
		return pstl.Seq, hostWrap
	}
}

// measure runs b repeat times on fresh copies of input. Algorithm failures are
// reported in the result; only a cancelled context is returned as an error.
func measure(ctx context.Context, b benchmark, p pstl.Policy, wrap wrapFunc, input []int64, repeat int) (result, error) {
	res := result{Algorithm: b.name, Policy: p.Mode().String()}
	if backend, err := pstl.Select(p, b.class, pstl.Describe[int64](wrap(nil))); err == nil {
		res.Backend = backend.String()
	} else {
		res.Backend = "-"
	}

	times := make([]time.Duration, 0, repeat)
	for range repeat {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s under %s: %w", b.name, res.Policy, err)
		}
		data := slices.Clone(input)
		start := time.Now()
		digest, err := b.run(p, wrap, data)
		times = append(times, time.Since(start))
		if err != nil {
			res.Err = err
			return res, nil
		}
		res.Digest = digest
	}
	res.Best = lo.Min(times)
	res.Mean = lo.Sum(times) / time.Duration(len(times))
	return res, nil
}

func randomInput(n int, seed uint64) []int64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]int64, n)
	for i := range out {
		out[i] = rng.Int64N(1 << 20)
	}
	return out
}

func report(w io.Writer, results []result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tPOLICY\tBACKEND\tBEST\tMEAN\tSTATUS")
	for _, r := range results {
		status := "ok"
		switch {
		case r.Err != nil:
			status = r.Err.Error()
		case !r.Match:
			status = "mismatch"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Algorithm, r.Policy, r.Backend, r.Best, r.Mean, status)
	}
	return tw.Flush()
}

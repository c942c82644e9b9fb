package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authstate"
)

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func runLoadtestCommand(out io.Writer) error {
	if CLI.Loadtest.Concurrency <= 0 || CLI.Loadtest.Ops <= 0 || CLI.Loadtest.Listeners < 0 {
		return errors.New("concurrency and ops must be > 0, listeners >= 0")
	}

	c, err := authstate.New().WithLatencyHistograms(true).Build()
	if err != nil {
		return err
	}
	defer c.Close()

	var notified atomic.Int64
	for i := 0; i < CLI.Loadtest.Listeners; i++ {
		c.Subscribe(func(context.Context, authstate.Session) { notified.Add(1) })
	}

	ctx := context.Background()
	var busy atomic.Int64
	dispatchStats := runPhase(CLI.Loadtest.Ops, CLI.Loadtest.Concurrency, func(i int) error {
		for {
			var err error
			if i%2 == 0 {
				err = c.Establish(ctx, authstate.Identity{ID: fmt.Sprintf("u%d", i%1024), DisplayName: "load"})
			} else {
				err = c.Clear(ctx)
			}
			if !errors.Is(err, authstate.ErrReentrantDispatch) {
				return err
			}
			busy.Add(1)
			runtime.Gosched()
		}
	})
	readStats := runPhase(CLI.Loadtest.Ops, CLI.Loadtest.Concurrency, func(int) error {
		if s := c.GetState(); !s.Valid() {
			return errors.New("inconsistent session")
		}
		return nil
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "dispatch", dispatchStats)
	printStats(out, "getstate", readStats)
	fmt.Fprintf(out, "revision=%d notifications=%d busy_retries=%d\n", c.Revision(), notified.Load(), busy.Load())
	return nil
}

// runPhase runs op ops times across concurrency workers and collects the
// latency of every call.
func runPhase(ops, concurrency int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				err := op(i)
				local = append(local, time.Since(t0))
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

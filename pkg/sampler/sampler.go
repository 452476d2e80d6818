package sampler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opscart/kube-trim/pkg/datasource"
	"github.com/opscart/kube-trim/pkg/lookup"
	"github.com/opscart/kube-trim/pkg/models"
	"github.com/opscart/kube-trim/pkg/store"
)

// Sampler drives the collection loop: every interval it fetches node and
// pod usage concurrently, parses both, resolves each pod line's image and
// requested memory through the lookup client, and appends the results to
// the store. No failure inside a cycle stops the loop.
type Sampler struct {
	querier  datasource.Querier
	lookups  *lookup.Client
	store    *store.MetricsStore
	interval time.Duration
	workers  int
	verbose  bool
}

func New(querier datasource.Querier, lookups *lookup.Client, st *store.MetricsStore, interval time.Duration, workers int, verbose bool) *Sampler {
	if interval <= 0 {
		interval = time.Second
	}
	if workers <= 0 {
		workers = 8
	}
	return &Sampler{
		querier:  querier,
		lookups:  lookups,
		store:    st,
		interval: interval,
		workers:  workers,
		verbose:  verbose,
	}
}

// Run loops until ctx is cancelled. The ticker measures cycle start to
// cycle start; a slow cycle runs back-to-back with the next rather than
// drifting the schedule.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Sampler) cycle(ctx context.Context) {
	ts := time.Now()

	// Both usage fetches run concurrently; either may fail on its own and
	// the cycle carries on with whatever came back.
	var nodeOutput, podOutput string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := s.querier.NodeUsage(ctx)
		if err != nil {
			fetchErrors.WithLabelValues("node").Inc()
			fmt.Printf("[WARN] node usage fetch failed: %v\n", err)
			return
		}
		nodeOutput = out
	}()
	go func() {
		defer wg.Done()
		out, err := s.querier.PodUsage(ctx)
		if err != nil {
			fetchErrors.WithLabelValues("pod").Inc()
			fmt.Printf("[WARN] pod usage fetch failed: %v\n", err)
			return
		}
		podOutput = out
	}()
	wg.Wait()

	if nodeOutput != "" {
		nodeRows := parseNodeUsage(nodeOutput, ts)
		s.store.AppendNodeSamples(nodeRows)
		s.logVerbose("appended %d node samples", len(nodeRows))
	}
	if podOutput != "" {
		podRows := s.resolvePodLines(ctx, parsePodUsage(podOutput), ts)
		s.store.AppendPodSamples(podRows)
		s.logVerbose("appended %d pod samples", len(podRows))
	}

	nodeCount, podCount := s.store.Counts()
	tableRows.WithLabelValues("node").Set(float64(nodeCount))
	tableRows.WithLabelValues("pod").Set(float64(podCount))
	cycleCount.Inc()
}

// resolvePodLines runs the image and requested-memory lookup pair for
// each retained line through a bounded worker pool. Results keep line
// order so appends stay deterministic regardless of lookup timing.
func (s *Sampler) resolvePodLines(ctx context.Context, lines []podLine, ts time.Time) []models.PodSample {
	if len(lines) == 0 {
		return nil
	}

	resolved := make([]models.PodSample, len(lines))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, line := range lines {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, line podLine) {
			defer wg.Done()
			defer func() { <-sem }()

			image := s.lookups.Image(ctx, line.namespace, line.pod)
			requested := s.lookups.RequestedMemory(ctx, line.namespace, line.pod)
			s.store.RecordRequestedMemory(line.namespace, line.pod, requested)

			resolved[i] = models.PodSample{
				Timestamp:       ts,
				Pod:             line.pod,
				Namespace:       line.namespace,
				CPUMillicores:   line.cpu,
				MemoryMebibytes: line.memory,
				Image:           image,
			}
		}(i, line)
	}
	wg.Wait()

	return resolved
}

func (s *Sampler) logVerbose(format string, args ...interface{}) {
	if s.verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

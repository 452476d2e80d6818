package datasource

import (
	"context"
	"fmt"
	"time"
)

// Querier is the cluster query interface the sampler and lookup client
// consume. Usage results are the tabular text kubectl top prints (header
// line plus one row per entity); lookup results are single-line,
// whitespace-joined values across a pod's containers.
//
// Every implementation applies its own per-call deadline so a hung
// backend cannot stall a sampling cycle forever.
type Querier interface {
	// NodeUsage returns current node usage. The first three columns are
	// consumed: node name, CPU, memory; anything after is ignored.
	NodeUsage(ctx context.Context) (string, error)
	// PodUsage returns current pod usage across all namespaces. The
	// first four columns are consumed: namespace, pod, CPU, memory.
	PodUsage(ctx context.Context) (string, error)
	// PodImages returns the pod's container images, space-joined.
	PodImages(ctx context.Context, namespace, pod string) (string, error)
	// PodMemoryRequests returns the pod's declared memory requests,
	// space-joined; empty means no request declared.
	PodMemoryRequests(ctx context.Context, namespace, pod string) (string, error)
	// Name identifies the backend for logs.
	Name() string
}

// Config selects and tunes a Querier backend.
type Config struct {
	Source        string // kubectl, metrics-api, prometheus
	KubectlPath   string
	PrometheusURL string
	QueryTimeout  time.Duration
}

// New builds the Querier named by cfg.Source.
func New(cfg Config) (Querier, error) {
	switch cfg.Source {
	case "", "kubectl":
		return NewKubectlQuerier(cfg.KubectlPath, cfg.QueryTimeout), nil
	case "metrics-api":
		return NewMetricsAPIQuerier(cfg.QueryTimeout)
	case "prometheus":
		return NewPrometheusQuerier(cfg.PrometheusURL, cfg.QueryTimeout)
	default:
		return nil, fmt.Errorf("unknown metrics source %q", cfg.Source)
	}
}

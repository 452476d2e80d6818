package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// PrometheusQuerier reconstructs node and pod usage from a Prometheus
// server scraping node-exporter, cAdvisor and kube-state-metrics. Like
// the metrics-api backend it renders kubectl-top-shaped text so the
// sampler parses all backends the same way.
type PrometheusQuerier struct {
	client  v1.API
	url     string
	timeout time.Duration
}

func NewPrometheusQuerier(url string, timeout time.Duration) (*PrometheusQuerier, error) {
	client, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PrometheusQuerier{
		client:  v1.NewAPI(client),
		url:     url,
		timeout: timeout,
	}, nil
}

func (p *PrometheusQuerier) Name() string { return "prometheus" }

func (p *PrometheusQuerier) NodeUsage(ctx context.Context) (string, error) {
	cpuByNode, err := p.queryVector(ctx,
		`sum by (instance) (rate(node_cpu_seconds_total{mode!="idle"}[1m]))`, "instance")
	if err != nil {
		return "", err
	}
	memByNode, err := p.queryVector(ctx,
		`node_memory_MemTotal_bytes - node_memory_MemAvailable_bytes`, "instance")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("NAME CPU(cores) MEMORY(bytes)\n")
	for _, node := range sortedKeys(cpuByNode) {
		fmt.Fprintf(&b, "%s %dm %dMi\n",
			node, int64(cpuByNode[node]*1000), int64(memByNode[node])/(1024*1024))
	}
	return b.String(), nil
}

func (p *PrometheusQuerier) PodUsage(ctx context.Context) (string, error) {
	cpuByPod, err := p.queryVector(ctx,
		`sum by (namespace, pod) (rate(container_cpu_usage_seconds_total{container!=""}[1m]))`,
		"namespace", "pod")
	if err != nil {
		return "", err
	}
	memByPod, err := p.queryVector(ctx,
		`sum by (namespace, pod) (container_memory_working_set_bytes{container!=""})`,
		"namespace", "pod")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("NAMESPACE NAME CPU(cores) MEMORY(bytes)\n")
	for _, key := range sortedKeys(cpuByPod) {
		// key is "namespace/pod", see queryVector
		nsPod := strings.SplitN(key, "/", 2)
		if len(nsPod) != 2 {
			continue
		}
		fmt.Fprintf(&b, "%s %s %dm %dMi\n",
			nsPod[0], nsPod[1], int64(cpuByPod[key]*1000), int64(memByPod[key])/(1024*1024))
	}
	return b.String(), nil
}

func (p *PrometheusQuerier) PodImages(ctx context.Context, namespace, pod string) (string, error) {
	query := fmt.Sprintf(`kube_pod_container_info{namespace=%q,pod=%q}`, namespace, pod)
	vector, err := p.query(ctx, query)
	if err != nil {
		return "", err
	}

	images := make([]string, 0, len(vector))
	for _, sample := range vector {
		if image, ok := sample.Metric["image"]; ok {
			images = append(images, string(image))
		}
	}
	return strings.Join(images, " "), nil
}

func (p *PrometheusQuerier) PodMemoryRequests(ctx context.Context, namespace, pod string) (string, error) {
	query := fmt.Sprintf(`kube_pod_container_resource_requests{namespace=%q,pod=%q,resource="memory"}`,
		namespace, pod)
	vector, err := p.query(ctx, query)
	if err != nil {
		return "", err
	}

	requests := make([]string, 0, len(vector))
	for _, sample := range vector {
		requests = append(requests, fmt.Sprintf("%dMi", int64(sample.Value)/(1024*1024)))
	}
	return strings.Join(requests, " "), nil
}

func (p *PrometheusQuerier) query(ctx context.Context, query string) (model.Vector, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, warnings, err := p.client.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(warnings) > 0 {
		fmt.Printf("[WARN] Prometheus: %v\n", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type for query: %s", query)
	}
	return vector, nil
}

// queryVector evaluates an instant query and keys the result by the given
// labels, joined with "/" when there is more than one.
func (p *PrometheusQuerier) queryVector(ctx context.Context, query string, labels ...string) (map[string]float64, error) {
	vector, err := p.query(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(vector))
	for _, sample := range vector {
		parts := make([]string, 0, len(labels))
		for _, label := range labels {
			parts = append(parts, string(sample.Metric[model.LabelName(label)]))
		}
		out[strings.Join(parts, "/")] += float64(sample.Value)
	}
	return out, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

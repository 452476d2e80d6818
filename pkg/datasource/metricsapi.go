package datasource

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"
)

// MetricsAPIQuerier talks to metrics.k8s.io directly through client-go
// instead of shelling out. It renders results as the same tabular text
// kubectl top prints, so the parsing path is identical across backends.
type MetricsAPIQuerier struct {
	clientset     *kubernetes.Clientset
	metricsClient *metricsv.Clientset
	timeout       time.Duration
}

func NewMetricsAPIQuerier(timeout time.Duration) (*MetricsAPIQuerier, error) {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	metricsClient, err := metricsv.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &MetricsAPIQuerier{
		clientset:     clientset,
		metricsClient: metricsClient,
		timeout:       timeout,
	}, nil
}

func (m *MetricsAPIQuerier) Name() string { return "metrics-api" }

func (m *MetricsAPIQuerier) NodeUsage(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	nodeMetrics, err := m.metricsClient.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list node metrics: %w", err)
	}

	// Allocatable is needed for the percentage columns kubectl top shows.
	allocatable := make(map[string]corev1.ResourceList)
	nodes, err := m.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err == nil {
		for _, node := range nodes.Items {
			allocatable[node.Name] = node.Status.Allocatable
		}
	}

	var b strings.Builder
	b.WriteString("NAME CPU(cores) MEMORY(bytes) CPU% MEMORY%\n")
	for _, nm := range nodeMetrics.Items {
		cpu := nm.Usage[corev1.ResourceCPU]
		mem := nm.Usage[corev1.ResourceMemory]

		cpuPct, memPct := int64(0), int64(0)
		if alloc, ok := allocatable[nm.Name]; ok {
			if ac, ok := alloc[corev1.ResourceCPU]; ok && ac.MilliValue() > 0 {
				cpuPct = cpu.MilliValue() * 100 / ac.MilliValue()
			}
			if am, ok := alloc[corev1.ResourceMemory]; ok && am.Value() > 0 {
				memPct = mem.Value() * 100 / am.Value()
			}
		}

		fmt.Fprintf(&b, "%s %dm %dMi %d%% %d%%\n",
			nm.Name, cpu.MilliValue(), mem.Value()/(1024*1024), cpuPct, memPct)
	}
	return b.String(), nil
}

func (m *MetricsAPIQuerier) PodUsage(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	podMetrics, err := m.metricsClient.MetricsV1beta1().PodMetricses(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list pod metrics: %w", err)
	}

	var b strings.Builder
	b.WriteString("NAMESPACE NAME CPU(cores) MEMORY(bytes)\n")
	for _, pm := range podMetrics.Items {
		var cpuMilli, memBytes int64
		for _, container := range pm.Containers {
			cpu := container.Usage[corev1.ResourceCPU]
			mem := container.Usage[corev1.ResourceMemory]
			cpuMilli += cpu.MilliValue()
			memBytes += mem.Value()
		}
		fmt.Fprintf(&b, "%s %s %dm %dMi\n",
			pm.Namespace, pm.Name, cpuMilli, memBytes/(1024*1024))
	}
	return b.String(), nil
}

func (m *MetricsAPIQuerier) PodImages(ctx context.Context, namespace, pod string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	p, err := m.clientset.CoreV1().Pods(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get pod %s/%s: %w", namespace, pod, err)
	}

	images := make([]string, 0, len(p.Spec.Containers))
	for _, container := range p.Spec.Containers {
		images = append(images, container.Image)
	}
	return strings.Join(images, " "), nil
}

func (m *MetricsAPIQuerier) PodMemoryRequests(ctx context.Context, namespace, pod string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	p, err := m.clientset.CoreV1().Pods(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get pod %s/%s: %w", namespace, pod, err)
	}

	var requests []string
	for _, container := range p.Spec.Containers {
		if mem, ok := container.Resources.Requests[corev1.ResourceMemory]; ok {
			requests = append(requests, mem.String())
		}
	}
	return strings.Join(requests, " "), nil
}

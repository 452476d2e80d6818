package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opscart/kube-trim/pkg/lookup"
	"github.com/opscart/kube-trim/pkg/store"
)

const nodeText = `NAME        CPU(cores)   MEMORY(bytes)   CPU%   MEMORY%
node-1      250m         4Gi             12%    54%
node-2      1000m        2048Mi          50%    27%
short-line
node-bad    abc          1Gi             9%     10%
`

const podText = `NAMESPACE     NAME      CPU(cores)   MEMORY(bytes)
default       web-0     50m          64Mi
default       web-1     75m          1Gi
kube-system   dns-0     5m           2048Ki
default       bad-pod   12m          garbage
`

type fakeQuerier struct {
	nodeText string
	nodeErr  error
	podText  string
	podErr   error
	images   map[string]string
	requests map[string]string
}

func (f *fakeQuerier) Name() string { return "fake" }

func (f *fakeQuerier) NodeUsage(ctx context.Context) (string, error) {
	return f.nodeText, f.nodeErr
}

func (f *fakeQuerier) PodUsage(ctx context.Context) (string, error) {
	return f.podText, f.podErr
}

func (f *fakeQuerier) PodImages(ctx context.Context, namespace, pod string) (string, error) {
	if image, ok := f.images[namespace+"/"+pod]; ok {
		return image, nil
	}
	return "", errors.New("pod not found")
}

func (f *fakeQuerier) PodMemoryRequests(ctx context.Context, namespace, pod string) (string, error) {
	if req, ok := f.requests[namespace+"/"+pod]; ok {
		return req, nil
	}
	return "", errors.New("pod not found")
}

func newTestSampler(q *fakeQuerier, st *store.MetricsStore) *Sampler {
	return New(q, lookup.New(q, false), st, time.Second, 4, false)
}

func TestCycleParsesAndAppends(t *testing.T) {
	q := &fakeQuerier{
		nodeText: nodeText,
		podText:  podText,
		images: map[string]string{
			"default/web-0":     "nginx:1.25",
			"default/web-1":     "nginx:1.25 istio/proxyv2:1.20",
			"kube-system/dns-0": "coredns:1.11",
			"default/bad-pod":   "busybox:1.36",
		},
		requests: map[string]string{
			"default/web-0": "128Mi",
			"default/web-1": "1Gi",
		},
	}
	st := store.New()
	s := newTestSampler(q, st)

	s.cycle(context.Background())

	raw := st.Raw()
	if len(raw.NodeSamples) != 2 {
		t.Fatalf("Expected 2 node samples (malformed lines dropped), got %d", len(raw.NodeSamples))
	}
	if raw.NodeSamples[0].Node != "node-1" || raw.NodeSamples[0].CPUMillicores != 250 {
		t.Errorf("Unexpected first node sample: %+v", raw.NodeSamples[0])
	}
	// Node memory stays in kibibytes: 4Gi -> 4194304 Ki.
	if raw.NodeSamples[0].MemoryKibibytes != 4*1024*1024 {
		t.Errorf("Expected 4Gi as %d Ki, got %d", 4*1024*1024, raw.NodeSamples[0].MemoryKibibytes)
	}
	if raw.NodeSamples[1].MemoryKibibytes != 2048*1024 {
		t.Errorf("Expected 2048Mi as %d Ki, got %d", 2048*1024, raw.NodeSamples[1].MemoryKibibytes)
	}

	if len(raw.PodSamples) != 3 {
		t.Fatalf("Expected 3 pod samples (bad-pod dropped), got %d", len(raw.PodSamples))
	}
	// Rows keep line order even though lookups run concurrently.
	if raw.PodSamples[0].Pod != "web-0" || raw.PodSamples[1].Pod != "web-1" || raw.PodSamples[2].Pod != "dns-0" {
		t.Errorf("Pod rows out of line order: %s %s %s",
			raw.PodSamples[0].Pod, raw.PodSamples[1].Pod, raw.PodSamples[2].Pod)
	}
	// Pod memory is mebibytes: 1Gi -> 1024 Mi, 2048Ki -> 2 Mi.
	if raw.PodSamples[1].MemoryMebibytes != 1024 {
		t.Errorf("Expected 1Gi as 1024 Mi, got %d", raw.PodSamples[1].MemoryMebibytes)
	}
	if raw.PodSamples[2].MemoryMebibytes != 2 {
		t.Errorf("Expected 2048Ki as 2 Mi, got %d", raw.PodSamples[2].MemoryMebibytes)
	}
	// Multi-container pods collapse to the first image.
	if raw.PodSamples[1].Image != "nginx:1.25" {
		t.Errorf("Expected first image nginx:1.25, got %s", raw.PodSamples[1].Image)
	}

	// The lookup pair was recorded for the recommendation engine.
	if got := st.RequestedMemory("default", "web-1"); got != 1024 {
		t.Errorf("Expected recorded request 1024 Mi, got %d", got)
	}
	if got := st.RequestedMemory("kube-system", "dns-0"); got != 0 {
		t.Errorf("Expected 0 for pod without declared request, got %d", got)
	}
}

func TestCycleTimestampsMonotonic(t *testing.T) {
	q := &fakeQuerier{nodeText: nodeText, podText: podText}
	st := store.New()
	s := newTestSampler(q, st)

	s.cycle(context.Background())
	s.cycle(context.Background())

	nodes := st.NodeSamples()
	if len(nodes) != 4 {
		t.Fatalf("Expected 4 node samples over 2 cycles, got %d", len(nodes))
	}
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Timestamp.Before(nodes[i-1].Timestamp) {
			t.Errorf("Timestamps went backwards at row %d", i)
		}
	}
}

func TestCycleNodeFetchFailure(t *testing.T) {
	q := &fakeQuerier{
		nodeErr: errors.New("connection refused"),
		podText: podText,
	}
	st := store.New()
	s := newTestSampler(q, st)

	s.cycle(context.Background())

	raw := st.Raw()
	if len(raw.NodeSamples) != 0 {
		t.Errorf("Expected no node samples after fetch failure, got %d", len(raw.NodeSamples))
	}
	if len(raw.PodSamples) != 3 {
		t.Errorf("Expected pod branch to proceed, got %d samples", len(raw.PodSamples))
	}
}

func TestCycleBothFetchesFail(t *testing.T) {
	q := &fakeQuerier{
		nodeErr: errors.New("connection refused"),
		podErr:  errors.New("connection refused"),
	}
	st := store.New()
	s := newTestSampler(q, st)

	// Must not panic and must leave the store untouched.
	s.cycle(context.Background())

	raw := st.Raw()
	if len(raw.NodeSamples) != 0 || len(raw.PodSamples) != 0 {
		t.Errorf("Expected empty store, got %d/%d rows", len(raw.NodeSamples), len(raw.PodSamples))
	}
}

func TestCycleLookupFailureDegrades(t *testing.T) {
	q := &fakeQuerier{podText: podText} // no images or requests known
	st := store.New()
	s := newTestSampler(q, st)

	s.cycle(context.Background())

	for _, sample := range st.PodSamples() {
		if sample.Image != "unknown" {
			t.Errorf("Expected image \"unknown\" on lookup failure, got %q", sample.Image)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	q := &fakeQuerier{nodeText: nodeText, podText: podText}
	st := store.New()
	s := New(q, lookup.New(q, false), st, 10*time.Millisecond, 4, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if len(st.NodeSamples()) < 2 {
		t.Errorf("Expected samples from multiple cycles, got %d", len(st.NodeSamples()))
	}
}

func TestParseNodeUsageHeaderOnly(t *testing.T) {
	rows := parseNodeUsage("NAME CPU(cores) CPU% MEMORY(bytes) MEMORY%\n", time.Now())
	if len(rows) != 0 {
		t.Errorf("Expected no rows from header-only output, got %d", len(rows))
	}
}

func TestParsePodUsagePercentTokens(t *testing.T) {
	out := "NAMESPACE NAME CPU(cores) MEMORY(bytes)\ndefault web-0 40% 80%\n"
	lines := parsePodUsage(out)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].cpu != 40 || lines[0].memory != 80 {
		t.Errorf("Expected percent tokens parsed as bare numbers, got cpu=%d mem=%d",
			lines[0].cpu, lines[0].memory)
	}
}

package store

import (
	"sync"

	"github.com/opscart/kube-trim/pkg/models"
)

// MetricsStore is the in-memory time-series table for node and pod
// samples, plus the latest requested-memory figure seen per pod. Appends
// take the write lock, reads take the read lock and copy, so a report
// reader never observes a half-appended batch.
//
// Rows are never evicted; the store grows for the life of the process.
type MetricsStore struct {
	mu    sync.RWMutex
	nodes []models.NodeSample
	pods  []models.PodSample
	specs map[string]int64 // "namespace/pod" -> requested memory Mi
}

func New() *MetricsStore {
	return &MetricsStore{
		specs: make(map[string]int64),
	}
}

// AppendNodeSamples adds one cycle's node rows as a single batch.
func (s *MetricsStore) AppendNodeSamples(rows []models.NodeSample) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, rows...)
}

// AppendPodSamples adds one cycle's pod rows as a single batch.
func (s *MetricsStore) AppendPodSamples(rows []models.PodSample) {
	if len(rows) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pods = append(s.pods, rows...)
}

// RecordRequestedMemory remembers the most recent declared memory request
// for a pod. Only the latest value per pod is kept.
func (s *MetricsStore) RecordRequestedMemory(namespace, pod string, mebibytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[namespace+"/"+pod] = mebibytes
}

// RequestedMemory returns the last recorded memory request for a pod in
// mebibytes, or 0 if none was ever recorded.
func (s *MetricsStore) RequestedMemory(namespace, pod string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.specs[namespace+"/"+pod]
}

// Counts returns the number of rows in each table.
func (s *MetricsStore) Counts() (nodes, pods int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.pods)
}

// NodeSamples returns a copy of the node table.
func (s *MetricsStore) NodeSamples() []models.NodeSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.NodeSample, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// PodSamples returns a copy of the pod table.
func (s *MetricsStore) PodSamples() []models.PodSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PodSample, len(s.pods))
	copy(out, s.pods)
	return out
}

// Raw returns a consistent snapshot of both tables.
func (s *MetricsStore) Raw() models.RawSamples {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw := models.RawSamples{
		NodeSamples: make([]models.NodeSample, len(s.nodes)),
		PodSamples:  make([]models.PodSample, len(s.pods)),
	}
	copy(raw.NodeSamples, s.nodes)
	copy(raw.PodSamples, s.pods)
	return raw
}

package models

import "time"

// NodeSample is one usage observation for a cluster node. Memory is kept
// in kibibytes on the node table; the pod table uses mebibytes. The two
// tables intentionally differ so downstream consumers see the same units
// they always have.
type NodeSample struct {
	Timestamp       time.Time `json:"timestamp"`
	Node            string    `json:"node"`
	CPUMillicores   int64     `json:"cpu_millicores"`
	MemoryKibibytes int64     `json:"memory_kibibytes"`
}

// PodSample is one usage observation for a pod, tagged with the image it
// was running at sample time. Image resolves to "unknown" when the lookup
// fails.
type PodSample struct {
	Timestamp       time.Time `json:"timestamp"`
	Pod             string    `json:"pod"`
	Namespace       string    `json:"namespace"`
	CPUMillicores   int64     `json:"cpu_millicores"`
	MemoryMebibytes int64     `json:"memory_mebibytes"`
	Image           string    `json:"image"`
}

// RawSamples is the verbatim contents of both tables, as served by the
// /metrics endpoint.
type RawSamples struct {
	NodeSamples []NodeSample `json:"node_metrics"`
	PodSamples  []PodSample  `json:"pod_metrics"`
}

package models

// Recommendation is the derived right-sizing suggestion for all pods
// sharing an image. Recomputed from the pod table on every report
// request, never persisted.
//
// RequestedCPU mirrors MaxCPU: kubectl top does not expose the declared
// CPU request, so peak usage stands in for it in the report.
type Recommendation struct {
	ID    string `json:"id"`
	Image string `json:"image"`

	AvgCPU    float64 `json:"avg_cpu_millicores"`
	MaxCPU    int64   `json:"max_cpu_millicores"`
	AvgMemory float64 `json:"avg_memory_mebibytes"`
	MaxMemory int64   `json:"max_memory_mebibytes"`

	RequestedCPU    int64 `json:"requested_cpu_millicores"`
	RequestedMemory int64 `json:"requested_memory_mebibytes"`

	RecommendedCPU    float64 `json:"recommended_cpu_millicores"`
	RecommendedMemory float64 `json:"recommended_memory_mebibytes"`

	CPUOverProvisionedRatio    float64 `json:"cpu_over_provisioned"`
	MemoryOverProvisionedRatio float64 `json:"memory_over_provisioned"`
}

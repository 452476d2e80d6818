package recommender

import (
	"github.com/google/uuid"
	"github.com/opscart/kube-trim/pkg/models"
)

// targetUtilization is the fraction of the recommended request actual
// usage should occupy. Recommendations divide observed usage by this so
// the suggested request leaves 10% headroom.
const targetUtilization = 0.9

// AllocationSource answers "what memory request does this pod declare",
// in mebibytes. The metrics store implements it from the lookups recorded
// at sample time, so computing a report needs no cluster round-trips.
type AllocationSource interface {
	RequestedMemory(namespace, pod string) int64
}

// ComputeReport derives one Recommendation per distinct image in the pod
// table. Output order is the first-occurrence order of each image across
// the table. The allocated memory for an image group comes from the first
// sample's pod, one representative standing in for the whole group.
func ComputeReport(samples []models.PodSample, alloc AllocationSource) []models.Recommendation {
	if len(samples) == 0 {
		return []models.Recommendation{}
	}

	var order []string
	groups := make(map[string][]models.PodSample)
	for _, sample := range samples {
		if _, seen := groups[sample.Image]; !seen {
			order = append(order, sample.Image)
		}
		groups[sample.Image] = append(groups[sample.Image], sample)
	}

	report := make([]models.Recommendation, 0, len(order))
	for _, image := range order {
		report = append(report, recommend(image, groups[image], alloc))
	}
	return report
}

func recommend(image string, group []models.PodSample, alloc AllocationSource) models.Recommendation {
	cpuValues := make([]int64, len(group))
	memValues := make([]int64, len(group))
	for i, sample := range group {
		cpuValues[i] = sample.CPUMillicores
		memValues[i] = sample.MemoryMebibytes
	}

	cpu := Describe(cpuValues)
	mem := Describe(memValues)

	allocatedMemory := alloc.RequestedMemory(group[0].Namespace, group[0].Pod)

	recommendedCPU := 1.0
	if cpu.Average > 0 {
		recommendedCPU = cpu.Average / targetUtilization
	}
	recommendedMemory := 1.0
	if mem.Max > 0 {
		recommendedMemory = float64(mem.Max) / targetUtilization
	}

	cpuOver := 0.0
	if recommendedCPU > 0 {
		cpuOver = float64(cpu.Max) / recommendedCPU
	}
	memOver := 0.0
	if recommendedMemory > 0 {
		memOver = float64(allocatedMemory) / recommendedMemory
	}

	return models.Recommendation{
		ID:                         uuid.NewString(),
		Image:                      image,
		AvgCPU:                     cpu.Average,
		MaxCPU:                     cpu.Max,
		AvgMemory:                  mem.Average,
		MaxMemory:                  mem.Max,
		RequestedCPU:               cpu.Max,
		RequestedMemory:            allocatedMemory,
		RecommendedCPU:             recommendedCPU,
		RecommendedMemory:          recommendedMemory,
		CPUOverProvisionedRatio:    cpuOver,
		MemoryOverProvisionedRatio: memOver,
	}
}

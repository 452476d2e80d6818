package summary

import (
	"fmt"
	"io"

	"github.com/opscart/kube-trim/pkg/models"
	"github.com/opscart/kube-trim/pkg/recommender"
	"github.com/opscart/kube-trim/pkg/store"
)

// Print writes the end-of-run digest: per-node usage statistics and the
// per-image recommendation report over everything collected. It is called
// on the shutdown path, so it recovers from any internal panic; shutdown
// must always complete.
func Print(w io.Writer, st *store.MetricsStore) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[ERROR] summary computation failed: %v\n", r)
		}
	}()

	raw := st.Raw()
	if len(raw.NodeSamples) == 0 && len(raw.PodSamples) == 0 {
		fmt.Fprintln(w, "No metrics collected.")
		return
	}

	printNodes(w, raw.NodeSamples)
	printImages(w, raw.PodSamples, st)
}

func printNodes(w io.Writer, samples []models.NodeSample) {
	var order []string
	cpuByNode := make(map[string][]int64)
	memByNode := make(map[string][]int64)
	for _, sample := range samples {
		if _, seen := cpuByNode[sample.Node]; !seen {
			order = append(order, sample.Node)
		}
		cpuByNode[sample.Node] = append(cpuByNode[sample.Node], sample.CPUMillicores)
		memByNode[sample.Node] = append(memByNode[sample.Node], sample.MemoryKibibytes)
	}

	for _, node := range order {
		cpu := recommender.Describe(cpuByNode[node])
		mem := recommender.Describe(memByNode[node])
		fmt.Fprintf(w, "\nSummary for Node: %s\n", node)
		fmt.Fprintf(w, "  CPU (mCores) - Min: %d, Max: %d, Avg: %.2f, P95: %.2f\n",
			cpu.Min, cpu.Max, cpu.Average, cpu.P95)
		fmt.Fprintf(w, "  Memory (Ki) - Min: %d, Max: %d, Avg: %.2f, P95: %.2f\n",
			mem.Min, mem.Max, mem.Average, mem.P95)
	}
}

func printImages(w io.Writer, samples []models.PodSample, alloc recommender.AllocationSource) {
	for _, rec := range recommender.ComputeReport(samples, alloc) {
		fmt.Fprintf(w, "\nSummary for Image: %s\n", rec.Image)
		fmt.Fprintf(w, "  CPU (mCores) - Max: %d\n", rec.MaxCPU)
		fmt.Fprintf(w, "  Memory (Mi) - Max: %d\n", rec.MaxMemory)
		fmt.Fprintf(w, "  Recommended CPU Request: %.2f mCores for 90%% utilization\n", rec.RecommendedCPU)
		if rec.RequestedMemory > 0 {
			utilization := float64(rec.MaxMemory) / float64(rec.RequestedMemory) * 100
			fmt.Fprintf(w, "  Memory Utilization: %.2f%%\n", utilization)
		}
		fmt.Fprintf(w, "  Recommended Memory Request: %.2f Mi for 90%% utilization\n", rec.RecommendedMemory)
	}
}

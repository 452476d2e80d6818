package recommender

import (
	"math"
	"testing"

	"github.com/opscart/kube-trim/pkg/models"
)

// fakeAlloc maps "namespace/pod" to a requested memory figure.
type fakeAlloc map[string]int64

func (f fakeAlloc) RequestedMemory(namespace, pod string) int64 {
	return f[namespace+"/"+pod]
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestComputeReportEmptyTable(t *testing.T) {
	report := ComputeReport(nil, fakeAlloc{})
	if len(report) != 0 {
		t.Errorf("Expected empty report, got %d entries", len(report))
	}
}

func TestComputeReportSingleImage(t *testing.T) {
	samples := []models.PodSample{
		{Pod: "web-0", Namespace: "default", CPUMillicores: 100, MemoryMebibytes: 400, Image: "nginx:1.0"},
		{Pod: "web-0", Namespace: "default", CPUMillicores: 200, MemoryMebibytes: 500, Image: "nginx:1.0"},
		{Pod: "web-1", Namespace: "default", CPUMillicores: 300, MemoryMebibytes: 450, Image: "nginx:1.0"},
	}
	alloc := fakeAlloc{"default/web-0": 600}

	report := ComputeReport(samples, alloc)
	if len(report) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(report))
	}

	rec := report[0]
	if rec.Image != "nginx:1.0" {
		t.Errorf("Expected image nginx:1.0, got %s", rec.Image)
	}
	if rec.AvgCPU != 200 {
		t.Errorf("Expected avg CPU 200, got %.2f", rec.AvgCPU)
	}
	if rec.MaxCPU != 300 {
		t.Errorf("Expected max CPU 300, got %d", rec.MaxCPU)
	}
	if rec.MaxMemory != 500 {
		t.Errorf("Expected max memory 500, got %d", rec.MaxMemory)
	}
	if !almostEqual(rec.RecommendedCPU, 222.22) {
		t.Errorf("Expected recommended CPU 222.22, got %.2f", rec.RecommendedCPU)
	}
	if !almostEqual(rec.CPUOverProvisionedRatio, 1.35) {
		t.Errorf("Expected CPU over-provisioned ratio 1.35, got %.2f", rec.CPUOverProvisionedRatio)
	}
	if !almostEqual(rec.RecommendedMemory, 555.56) {
		t.Errorf("Expected recommended memory 555.56, got %.2f", rec.RecommendedMemory)
	}
	if !almostEqual(rec.MemoryOverProvisionedRatio, 1.08) {
		t.Errorf("Expected memory over-provisioned ratio 1.08, got %.2f", rec.MemoryOverProvisionedRatio)
	}
	// Allocation must come from the first sample's pod, not from web-1.
	if rec.RequestedMemory != 600 {
		t.Errorf("Expected requested memory 600, got %d", rec.RequestedMemory)
	}
	if rec.ID == "" {
		t.Error("Expected a non-empty recommendation ID")
	}
}

func TestComputeReportZeroUsageFloors(t *testing.T) {
	samples := []models.PodSample{
		{Pod: "idle-0", Namespace: "default", CPUMillicores: 0, MemoryMebibytes: 0, Image: "pause:3.9"},
	}

	report := ComputeReport(samples, fakeAlloc{})
	if len(report) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(report))
	}

	rec := report[0]
	if rec.RecommendedCPU != 1 {
		t.Errorf("Expected floor CPU recommendation 1, got %.2f", rec.RecommendedCPU)
	}
	if rec.RecommendedMemory != 1 {
		t.Errorf("Expected floor memory recommendation 1, got %.2f", rec.RecommendedMemory)
	}
	if rec.MemoryOverProvisionedRatio != 0 {
		t.Errorf("Expected ratio 0 with no allocation, got %.2f", rec.MemoryOverProvisionedRatio)
	}
}

func TestComputeReportGroupsAcrossPods(t *testing.T) {
	// Samples from different pods sharing an image aggregate together;
	// output order follows first occurrence in the table.
	samples := []models.PodSample{
		{Pod: "web-0", Namespace: "default", CPUMillicores: 100, MemoryMebibytes: 100, Image: "nginx:1.0"},
		{Pod: "db-0", Namespace: "default", CPUMillicores: 400, MemoryMebibytes: 800, Image: "postgres:16"},
		{Pod: "web-1", Namespace: "other", CPUMillicores: 300, MemoryMebibytes: 200, Image: "nginx:1.0"},
	}

	report := ComputeReport(samples, fakeAlloc{})
	if len(report) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(report))
	}
	if report[0].Image != "nginx:1.0" || report[1].Image != "postgres:16" {
		t.Errorf("Expected first-occurrence order [nginx:1.0 postgres:16], got [%s %s]",
			report[0].Image, report[1].Image)
	}
	if report[0].AvgCPU != 200 {
		t.Errorf("Expected nginx avg CPU 200 across pods, got %.2f", report[0].AvgCPU)
	}
	if report[0].MaxCPU != 300 {
		t.Errorf("Expected nginx max CPU 300, got %d", report[0].MaxCPU)
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]int64{10, 20, 30, 40})
	if s.Min != 10 || s.Max != 40 {
		t.Errorf("Expected min 10 max 40, got %d/%d", s.Min, s.Max)
	}
	if s.Average != 25 {
		t.Errorf("Expected average 25, got %.2f", s.Average)
	}
	if !almostEqual(s.P95, 38.5) {
		t.Errorf("Expected P95 38.5, got %.2f", s.P95)
	}

	empty := Describe(nil)
	if empty.Max != 0 || empty.Average != 0 {
		t.Errorf("Expected zero stats for empty series, got %+v", empty)
	}
}

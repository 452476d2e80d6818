package sampler

import (
	"strings"
	"time"

	"github.com/opscart/kube-trim/pkg/models"
	"github.com/opscart/kube-trim/pkg/units"
)

// parseNodeUsage turns kubectl-top-shaped node text into samples. The
// header line is discarded, lines with fewer than three fields are
// skipped, and lines whose quantities do not parse are dropped.
func parseNodeUsage(output string, ts time.Time) []models.NodeSample {
	var rows []models.NodeSample
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		cpu, err := units.ParseCPU(fields[1])
		if err != nil {
			droppedLines.WithLabelValues("node").Inc()
			continue
		}
		memory, err := units.ParseMemory(fields[2], units.Kibibytes)
		if err != nil {
			droppedLines.WithLabelValues("node").Inc()
			continue
		}

		rows = append(rows, models.NodeSample{
			Timestamp:       ts,
			Node:            fields[0],
			CPUMillicores:   cpu,
			MemoryKibibytes: memory,
		})
	}
	return rows
}

// podLine is one retained pod usage line before its lookups resolve.
type podLine struct {
	namespace string
	pod       string
	cpu       int64
	memory    int64
}

// parsePodUsage extracts the typed columns from pod usage text. Lookup
// resolution happens later, concurrently, in the cycle.
func parsePodUsage(output string) []podLine {
	var rows []podLine
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		cpu, err := units.ParseCPU(fields[2])
		if err != nil {
			droppedLines.WithLabelValues("pod").Inc()
			continue
		}
		memory, err := units.ParseMemory(fields[3], units.Mebibytes)
		if err != nil {
			droppedLines.WithLabelValues("pod").Inc()
			continue
		}

		rows = append(rows, podLine{
			namespace: fields[0],
			pod:       fields[1],
			cpu:       cpu,
			memory:    memory,
		})
	}
	return rows
}

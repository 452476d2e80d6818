package datasource

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKubectlQuerierRunsBinary(t *testing.T) {
	// echo stands in for kubectl: the querier only cares about argv and stdout.
	q := NewKubectlQuerier("echo", 2*time.Second)

	out, err := q.NodeUsage(context.Background())
	if err != nil {
		t.Fatalf("NodeUsage failed: %v", err)
	}
	if strings.TrimSpace(out) != "top nodes" {
		t.Errorf("Unexpected argv passed: %q", out)
	}

	out, err = q.PodUsage(context.Background())
	if err != nil {
		t.Fatalf("PodUsage failed: %v", err)
	}
	if strings.TrimSpace(out) != "top pods --all-namespaces" {
		t.Errorf("Unexpected argv passed: %q", out)
	}

	out, err = q.PodImages(context.Background(), "default", "web-0")
	if err != nil {
		t.Fatalf("PodImages failed: %v", err)
	}
	if !strings.Contains(out, "jsonpath={.spec.containers[*].image}") {
		t.Errorf("Image lookup missing jsonpath: %q", out)
	}
}

func TestKubectlQuerierMissingBinary(t *testing.T) {
	q := NewKubectlQuerier("/nonexistent/kubectl", time.Second)
	if _, err := q.NodeUsage(context.Background()); err == nil {
		t.Fatal("Expected error for missing binary")
	}
}

func TestKubectlQuerierTimeout(t *testing.T) {
	q := NewKubectlQuerier("sh", 100*time.Millisecond)
	start := time.Now()
	_, err := q.run(context.Background(), "-c", "sleep 5")
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Timeout not enforced")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	q, err := New(Config{Source: "kubectl"})
	if err != nil {
		t.Fatalf("New(kubectl) failed: %v", err)
	}
	if q.Name() != "kubectl" {
		t.Errorf("Expected kubectl backend, got %s", q.Name())
	}

	if _, err := New(Config{Source: "statsd"}); err == nil {
		t.Error("Expected error for unknown source")
	}
}

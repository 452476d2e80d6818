package datasource

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// KubectlQuerier shells out to the kubectl binary. This is the default
// backend: it needs nothing beyond a working kubeconfig and matches what
// an operator sees when running kubectl top by hand.
type KubectlQuerier struct {
	path    string
	timeout time.Duration
}

func NewKubectlQuerier(path string, timeout time.Duration) *KubectlQuerier {
	if path == "" {
		path = "kubectl"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KubectlQuerier{path: path, timeout: timeout}
}

func (k *KubectlQuerier) Name() string { return "kubectl" }

func (k *KubectlQuerier) NodeUsage(ctx context.Context) (string, error) {
	return k.run(ctx, "top", "nodes")
}

func (k *KubectlQuerier) PodUsage(ctx context.Context) (string, error) {
	return k.run(ctx, "top", "pods", "--all-namespaces")
}

func (k *KubectlQuerier) PodImages(ctx context.Context, namespace, pod string) (string, error) {
	return k.run(ctx, "get", "pod", pod, "-n", namespace,
		"-o", "jsonpath={.spec.containers[*].image}")
}

func (k *KubectlQuerier) PodMemoryRequests(ctx context.Context, namespace, pod string) (string, error) {
	return k.run(ctx, "get", "pod", pod, "-n", namespace,
		"-o", "jsonpath={.spec.containers[*].resources.requests.memory}")
}

func (k *KubectlQuerier) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, k.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("failed to run %s %s: %s", k.path, strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/opscart/kube-trim/pkg/datasource"
	"github.com/opscart/kube-trim/pkg/units"
)

// Client resolves the per-pod facts the usage tables cannot provide: the
// declared image and the requested memory. Lookups never fail upward; a
// broken lookup degrades to "unknown" / 0 and the cycle keeps going.
// There is no caching: one query pair per pod per sampling cycle.
type Client struct {
	querier datasource.Querier
	verbose bool
}

func New(querier datasource.Querier, verbose bool) *Client {
	return &Client{querier: querier, verbose: verbose}
}

// Image returns the pod's first declared container image, or "unknown".
func (c *Client) Image(ctx context.Context, namespace, pod string) string {
	out, err := c.querier.PodImages(ctx, namespace, pod)
	if err != nil {
		c.logVerbose("image lookup for %s/%s failed: %v", namespace, pod, err)
		return "unknown"
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}

// RequestedMemory returns the pod's first declared memory request in
// mebibytes, or 0 when no request is declared or the lookup fails.
func (c *Client) RequestedMemory(ctx context.Context, namespace, pod string) int64 {
	out, err := c.querier.PodMemoryRequests(ctx, namespace, pod)
	if err != nil {
		c.logVerbose("memory request lookup for %s/%s failed: %v", namespace, pod, err)
		return 0
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0
	}

	mebibytes, err := units.ParseMemory(fields[0], units.Mebibytes)
	if err != nil {
		c.logVerbose("unparseable memory request %q for %s/%s", fields[0], namespace, pod)
		return 0
	}
	return mebibytes
}

func (c *Client) logVerbose(format string, args ...interface{}) {
	if c.verbose {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

package rowan

import (
	"fmt"
	"os"
	"time"
)

// FrameStats holds per-frame pipeline metrics. Counters are always kept;
// timings are only populated when debug logging is on.
type FrameStats struct {
	Collects      int // full re-collections
	Updates       int // incremental update passes
	Draws         int // batch submissions
	FilterRenders int // filter chains re-rendered

	CollectTime time.Duration
	DrawTime    time.Duration
}

// debugLog prints frame stats to stderr when debug is enabled.
func (r *Renderer) debugLog() {
	if !r.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[rowan] collect: %v | draw: %v | full: %d | incremental: %d | batches: %d | filters: %d\n",
		r.stats.CollectTime, r.stats.DrawTime,
		r.stats.Collects, r.stats.Updates, r.stats.Draws, r.stats.FilterRenders)
}

// debugChecks enables extra structural validation in tree operations.
// Package-level so Node methods can consult it without a renderer reference.
var debugChecks bool

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[rowan] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/flocklens/flocklens/internal/core"
)

// DefaultFanOut caps how many outbound edges are fetched per node.
const DefaultFanOut = 500

type frontierEntry struct {
	node  int64
	depth int
}

// IndustryGroup runs a depth-bounded breadth-first expansion over the
// "follows" relation starting from seeds, returning for every node reached
// the number of in-group nodes that follow it. Nodes first discovered at
// depth maxDepth+1 are counted but never expanded; a node is expanded at most
// once, at the depth of its first discovery.
func (s *Scheduler) IndustryGroup(ctx context.Context, seeds []int64, maxDepth int, fanOut int) (*core.GroupResult, error) {
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}

	result := &core.GroupResult{
		Seeds:     append([]int64(nil), seeds...),
		Depth:     maxDepth,
		InDegree:  make(map[int64]int),
		StartedAt: s.now(),
	}

	requestsBefore := s.TotalRequests()

	frontier := make([]frontierEntry, 0, len(seeds))
	for _, seed := range seeds {
		frontier = append(frontier, frontierEntry{node: seed, depth: 0})
	}

	for len(frontier) > 0 {
		entry := frontier[0]
		frontier = frontier[1:]

		following, err := s.FetchFollowingIDs(ctx, entry.node, fanOut)
		if err != nil {
			return nil, err
		}

		s.logDebug("expanded node",
			zap.Int64("node", entry.node),
			zap.Int("depth", entry.depth),
			zap.Int("edges", len(following)),
			zap.Int("discovered", len(result.InDegree)))

		for _, neighbor := range following {
			// First discovery decides whether a node is ever expanded. The
			// membership check must precede the increment so re-discoveries
			// only add to the count.
			if entry.depth < maxDepth {
				if _, known := result.InDegree[neighbor]; !known {
					frontier = append(frontier, frontierEntry{node: neighbor, depth: entry.depth + 1})
				}
			}
			result.InDegree[neighbor]++
		}
	}

	result.Requests = s.TotalRequests() - requestsBefore
	result.CompletedAt = s.now()

	s.logInfo("industry group crawl complete",
		zap.Int("seeds", len(seeds)),
		zap.Int("depth", maxDepth),
		zap.Int("nodes", len(result.InDegree)),
		zap.Int("requests", result.Requests))

	return result, nil
}

func (s *Scheduler) logDebug(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields...)
	}
}

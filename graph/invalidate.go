package graph

import (
	"context"
	"time"
)

// InvalidateCascade marks origin and every node reachable from it stale,
// clearing each input fed along the way. Each node is visited once per
// cascade, so cycles terminate.
func (g *Graph) InvalidateCascade(origin NodeID) error {
	n, err := g.lookup(origin)
	if err != nil {
		return err
	}
	g.invalidateCascade(n, nil)
	return nil
}

// InvalidateCascadeUntil is InvalidateCascade with a barrier node that is
// neither invalidated nor expanded. The barrier's own inputs are still
// cleared when an invalidated predecessor feeds them.
func (g *Graph) InvalidateCascadeUntil(origin, barrier NodeID) error {
	n, err := g.lookup(origin)
	if err != nil {
		return err
	}
	b, err := g.lookup(barrier)
	if err != nil {
		return err
	}
	g.invalidateCascade(n, b)
	return nil
}

// invalidateCascade walks successors breadth first and returns how many
// nodes it marked stale.
func (g *Graph) invalidateCascade(origin, barrier *Node) int {
	ctx := context.Background()
	visited := make(map[NodeID]bool)
	queued := map[NodeID]bool{origin.id: true}
	frontier := []*Node{origin}
	count := 0

	for len(frontier) > 0 {
		var next []*Node
		for _, n := range frontier {
			if n == barrier {
				continue
			}
			n.InvalidateOutputValues()
			visited[n.id] = true
			count++
			g.emit(ctx, Event{Type: NodeEventStale, Timestamp: time.Now(), Node: n.id, Kind: n.kind.Name()})

			for _, l := range n.Links() {
				t, ok := g.index[l.Target]
				if !ok {
					continue
				}
				t.InvalidateInputValue(l.Input)
				if !visited[t.id] && !queued[t.id] {
					queued[t.id] = true
					next = append(next, t)
				}
			}
		}
		frontier = next
	}

	g.logger.Debug("cascade from node %d invalidated %d node(s)", origin.id, count)
	return count
}

// InvalidateAllNodes makes every node stale, cascading from each node that
// is still fresh.
func (g *Graph) InvalidateAllNodes() {
	for _, n := range g.nodes {
		if g.allStale() {
			return
		}
		if !n.needsRunning {
			g.invalidateCascade(n, nil)
		}
	}
}

func (g *Graph) allStale() bool {
	for _, n := range g.nodes {
		if !n.needsRunning {
			return false
		}
	}
	return true
}

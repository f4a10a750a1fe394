package graph

// DirectParents returns the ids of nodes with an edge into targetID, in edge
// order. A parent connected by several edges is listed once.
func DirectParents(targetID string, g Graph) []string {
	parents := []string{}
	seen := map[string]bool{}
	for _, edge := range g.Edges {
		if edge.Target != targetID || seen[edge.Source] {
			continue
		}
		seen[edge.Source] = true
		parents = append(parents, edge.Source)
	}
	return parents
}

// FindUpstreamNodes returns every ancestor of targetID, each exactly once.
//
// Direct parents come first in edge order, followed by further ancestors in
// the order they are discovered. The walk keeps an explicit worklist and a
// visited set seeded with targetID, so cycles and self loops terminate and
// long chains do not grow the call stack.
func FindUpstreamNodes(targetID string, g Graph) []string {
	incoming := make(map[string][]string, len(g.Edges))
	for _, edge := range g.Edges {
		incoming[edge.Target] = append(incoming[edge.Target], edge.Source)
	}

	visited := map[string]bool{targetID: true}
	ancestors := []string{}
	queue := []string{targetID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, parent := range incoming[current] {
			if visited[parent] {
				continue
			}
			visited[parent] = true
			ancestors = append(ancestors, parent)
			queue = append(queue, parent)
		}
	}

	return ancestors
}

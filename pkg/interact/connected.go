package interact

// Connected returns the nodes reachable from start through unlocked nodes.
// Locked nodes are never entered and never traversed, so they act as walls.
// start itself is not part of the result; a locked start yields an empty set.
// Ids referenced by adj but absent from it are treated as boundaries.
func Connected(start string, adj map[string][]string, locked map[string]bool) map[string]bool {
	reached := make(map[string]bool)
	if locked[start] {
		return reached
	}
	if _, ok := adj[start]; !ok {
		return reached
	}

	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] || locked[next] {
				continue
			}
			if _, ok := adj[next]; !ok {
				continue
			}
			visited[next] = true
			reached[next] = true
			queue = append(queue, next)
		}
	}
	return reached
}

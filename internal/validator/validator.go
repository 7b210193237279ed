package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/hostflow/pkg/domain"
)

// Graph is the read-only view of a loaded flow.
type Graph interface {
	Start() string
	Nodes() []*domain.Node
	Lookup(id string) (*domain.Node, error)
}

// ValidateGraph checks that every node is reachable from the start node and
// that a terminal node is reachable from every node.
func ValidateGraph(g Graph) error {
	var errors []string

	for _, id := range Unreachable(g) {
		errors = append(errors, fmt.Sprintf("Unreachable node: '%s'", id))
	}
	for _, id := range Stuck(g) {
		errors = append(errors, fmt.Sprintf("No path to a terminal node from: '%s'", id))
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// Unreachable returns the ids of nodes that cannot be entered from the start node.
func Unreachable(g Graph) []string {
	visited := make(map[string]bool)
	queue := []string{g.Start()}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, err := g.Lookup(currentID)
		if err != nil {
			continue
		}
		for _, target := range successors(node) {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for _, n := range g.Nodes() {
		if !visited[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// Stuck returns the ids of nodes from which no terminal node can be reached.
func Stuck(g Graph) []string {
	nodes := g.Nodes()
	reverse := make(map[string][]string)
	var queue []string
	for _, n := range nodes {
		if n.IsTerminal() {
			queue = append(queue, n.ID)
		}
		for _, target := range successors(n) {
			reverse[target] = append(reverse[target], n.ID)
		}
	}

	canFinish := make(map[string]bool)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if canFinish[id] {
			continue
		}
		canFinish[id] = true
		queue = append(queue, reverse[id]...)
	}

	var out []string
	for _, n := range nodes {
		if !canFinish[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// LongestPath returns the longest simple path from the start node to a
// terminal node, counted in transitions, together with the node ids on it.
// Self-loops are ignored. It returns -1 when no terminal node is reachable.
func LongestPath(g Graph) (int, []string) {
	best := -1
	var bestPath []string
	onPath := make(map[string]bool)
	var path []string

	var walk func(id string)
	walk = func(id string) {
		node, err := g.Lookup(id)
		if err != nil {
			return
		}
		onPath[id] = true
		path = append(path, id)
		defer func() {
			onPath[id] = false
			path = path[:len(path)-1]
		}()

		if node.IsTerminal() {
			if len(path)-1 > best {
				best = len(path) - 1
				bestPath = append([]string(nil), path...)
			}
			return
		}
		for _, next := range successors(node) {
			if !onPath[next] {
				walk(next)
			}
		}
	}
	walk(g.Start())
	return best, bestPath
}

// successors lists the distinct nodes an action can move to, excluding self-loops.
func successors(n *domain.Node) []string {
	set := make(map[string]bool)
	for _, a := range n.Actions {
		if !a.SelfLoops(n.ID) {
			set[a.Successor] = true
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Package graph builds the station adjacency graph from the section lists of
// tariff book 1 and answers hop-count shortest path queries over it.
package graph

import (
	"regexp"
	"sort"
	"strings"
)

// Node is a station in the adjacency graph.
type Node struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var sectionCodeRe = regexp.MustCompile(`^\d{5,6}$`)

// ParseSectionRows extracts station chains from book 1 rows. A row whose
// second column is a 5-6 digit code extends the current chain (name in the
// third column); any other row breaks it. Chains shorter than two stations
// are dropped.
func ParseSectionRows(rows [][]string) [][]Node {
	var (
		chains  [][]Node
		current []Node
	)
	flush := func() {
		if len(current) >= 2 {
			chains = append(chains, current)
		}
		current = nil
	}
	for _, row := range rows {
		if len(row) < 3 {
			flush()
			continue
		}
		code := strings.TrimSpace(row[1])
		if !sectionCodeRe.MatchString(code) {
			flush()
			continue
		}
		current = append(current, Node{Code: code, Name: strings.TrimSpace(row[2])})
	}
	flush()
	return chains
}

// Graph is an undirected graph of stations keyed by code with unit edge
// weights. It is immutable once built.
type Graph struct {
	adj   map[string][]string
	names map[string]string
	edges int
}

// Build creates a graph joining consecutive stations of every chain.
func Build(chains [][]Node) *Graph {
	g := &Graph{
		adj:   make(map[string][]string),
		names: make(map[string]string),
	}
	linked := make(map[[2]string]struct{})
	for _, chain := range chains {
		for i, n := range chain {
			if n.Code == "" {
				continue
			}
			if n.Name != "" {
				g.names[n.Code] = n.Name
			} else if _, ok := g.names[n.Code]; !ok {
				g.names[n.Code] = n.Code
			}
			if i == 0 || chain[i-1].Code == "" || chain[i-1].Code == n.Code {
				continue
			}
			a, b := chain[i-1].Code, n.Code
			if a > b {
				a, b = b, a
			}
			if _, dup := linked[[2]string{a, b}]; dup {
				continue
			}
			linked[[2]string{a, b}] = struct{}{}
			g.adj[a] = append(g.adj[a], b)
			g.adj[b] = append(g.adj[b], a)
			g.edges++
		}
	}
	for code := range g.adj {
		sort.Strings(g.adj[code])
	}
	return g
}

// Nodes is the number of stations in the graph.
func (g *Graph) Nodes() int { return len(g.names) }

// Edges is the number of distinct undirected links.
func (g *Graph) Edges() int { return g.edges }

// Has reports whether code is a node of the graph.
func (g *Graph) Has(code string) bool {
	_, ok := g.names[code]
	return ok
}

// ShortestPath returns the fewest-hop path between two station codes. Each
// 6-digit code is also tried without its check digit; the first combination
// with both ends present and connected wins. The result is empty when no
// path exists.
func (g *Graph) ShortestPath(from, to string) []Node {
	if g == nil {
		return nil
	}
	for _, u := range codeVariants(from) {
		for _, v := range codeVariants(to) {
			if !g.Has(u) || !g.Has(v) {
				continue
			}
			if path := g.bfs(u, v); len(path) > 0 {
				return path
			}
		}
	}
	return nil
}

func codeVariants(code string) []string {
	code = strings.TrimSpace(code)
	if len(code) == 6 {
		return []string{code, code[:5]}
	}
	return []string{code}
}

func (g *Graph) bfs(from, to string) []Node {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, next := range g.adj[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if _, ok := prev[to]; !ok {
		return nil
	}

	var codes []string
	for c := to; c != ""; c = prev[c] {
		codes = append(codes, c)
		if c == from {
			break
		}
	}
	path := make([]Node, len(codes))
	for i, c := range codes {
		path[len(codes)-1-i] = Node{Code: c, Name: g.names[c]}
	}
	return path
}

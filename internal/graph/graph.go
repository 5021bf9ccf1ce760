// Package graph holds the validated in-memory form of a roadmap flowchart.
// Parsing is fail-soft: one malformed record never blanks the visualization.
package graph

import (
	"encoding/json"
	"fmt"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Graph is a parsed roadmap flowchart. Insertion order of nodes is
// preserved; it drives default numeric labeling but not traversal.
type Graph struct {
	nodes []models.FlowNode
	edges []models.FlowEdge
	index map[string]int
}

// rawNode mirrors the untyped boundary payload. Editor exports nest the
// display fields under "data"; older records carry them flat. Flat wins.
type rawNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	Completion  *int     `json:"completion"`
	Difficulty  string   `json:"difficulty"`
	TimeSpent   string   `json:"timeSpent"`
	Resources   []string `json:"resources"`
	RedirectURL string   `json:"redirectUrl"`
	Data        *rawNode `json:"data"`
}

type rawEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type rawFlowchart struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

// Parse builds a Graph from a raw {nodes, edges} payload.
// Malformed individual nodes are defaulted or dropped, never fatal:
// a node missing both id and label is skipped, the rest still parse.
// An empty or undecodable payload yields an empty graph.
func Parse(raw []byte) *Graph {
	g := &Graph{index: make(map[string]int)}
	if len(raw) == 0 {
		return g
	}

	var fc rawFlowchart
	if err := json.Unmarshal(raw, &fc); err != nil {
		return g
	}

	for _, rn := range fc.Nodes {
		node, ok := normalize(rn)
		if !ok {
			continue
		}
		g.add(node)
	}

	for _, re := range fc.Edges {
		g.edges = append(g.edges, models.FlowEdge{Source: re.Source, Target: re.Target})
	}

	return g
}

// FromNodes builds a Graph from already-typed records (catalog path).
func FromNodes(nodes []models.FlowNode, edges []models.FlowEdge) *Graph {
	g := &Graph{index: make(map[string]int)}
	for _, n := range nodes {
		if n.ID == "" && n.Label == "" {
			continue
		}
		g.add(applyDefaults(n))
	}
	g.edges = append(g.edges, edges...)
	return g
}

// add appends a node, replacing a previous one with the same id (last wins).
func (g *Graph) add(n models.FlowNode) {
	if i, ok := g.index[n.ID]; ok && n.ID != "" {
		g.nodes[i] = n
		return
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
}

// normalize flattens a raw node and applies defaults.
// The second return is false when the node must be dropped.
func normalize(rn rawNode) (models.FlowNode, bool) {
	merged := rn
	if d := rn.Data; d != nil {
		if merged.Label == "" {
			merged.Label = d.Label
		}
		if merged.Description == "" {
			merged.Description = d.Description
		}
		if merged.Content == "" {
			merged.Content = d.Content
		}
		if merged.Status == "" {
			merged.Status = d.Status
		}
		if merged.Completion == nil {
			merged.Completion = d.Completion
		}
		if merged.Difficulty == "" {
			merged.Difficulty = d.Difficulty
		}
		if merged.TimeSpent == "" {
			merged.TimeSpent = d.TimeSpent
		}
		if merged.Resources == nil {
			merged.Resources = d.Resources
		}
		if merged.RedirectURL == "" {
			merged.RedirectURL = d.RedirectURL
		}
	}

	if merged.ID == "" && merged.Label == "" {
		return models.FlowNode{}, false
	}

	node := models.FlowNode{
		ID:          merged.ID,
		Label:       merged.Label,
		Description: merged.Description,
		Content:     merged.Content,
		Status:      models.NodeStatus(merged.Status),
		Difficulty:  merged.Difficulty,
		TimeSpent:   merged.TimeSpent,
		Resources:   merged.Resources,
		RedirectURL: merged.RedirectURL,
	}
	if merged.Completion != nil {
		node.Completion = *merged.Completion
	}

	return applyDefaults(node), true
}

func applyDefaults(n models.FlowNode) models.FlowNode {
	n.Status = n.Status.Normalize()
	if n.Completion < 0 {
		n.Completion = 0
	}
	if n.Completion > 100 {
		n.Completion = 100
	}
	if n.Difficulty == "" {
		n.Difficulty = "medium"
	}
	if n.TimeSpent == "" {
		n.TimeSpent = "0h"
	}
	if n.Resources == nil {
		n.Resources = []string{}
	}
	return n
}

// NodeCount returns the number of parsed nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, resolved or not
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns the parsed nodes in insertion order
func (g *Graph) Nodes() []models.FlowNode {
	return g.nodes
}

// Node looks a node up by id
func (g *Graph) Node(id string) (models.FlowNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return models.FlowNode{}, false
	}
	return g.nodes[i], true
}

// NodeIDs returns all node ids in insertion order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// ResolvedEdges returns only edges whose endpoints both reference a
// known node. A dangling reference degrades the rendering silently.
func (g *Graph) ResolvedEdges() []models.FlowEdge {
	resolved := make([]models.FlowEdge, 0, len(g.edges))
	for _, e := range g.edges {
		if _, ok := g.index[e.Source]; !ok {
			continue
		}
		if _, ok := g.index[e.Target]; !ok {
			continue
		}
		resolved = append(resolved, e)
	}
	return resolved
}

// Summary returns the "N nodes • M connections" display line
func (g *Graph) Summary() string {
	return fmt.Sprintf("%d nodes • %d connections", len(g.nodes), len(g.edges))
}

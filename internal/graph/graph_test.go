package graph

import (
	"testing"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func TestParseFlowchart(t *testing.T) {
	payload := []byte(`{
		"nodes": [
			{"id": "topic-1", "label": "Basics", "status": "done", "completion": 100},
			{"id": "topic-2", "label": "Concurrency", "status": "in-progress", "completion": 40},
			{"id": "topic-3", "label": "HTTP"}
		],
		"edges": [
			{"source": "topic-1", "target": "topic-2"},
			{"source": "topic-2", "target": "topic-3"}
		]
	}`)

	g := Parse(payload)

	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected 2 edges, got %d", g.EdgeCount())
	}

	node, ok := g.Node("topic-1")
	if !ok {
		t.Fatal("topic-1 not found")
	}
	if node.Status != models.StatusDone {
		t.Errorf("expected status done, got %s", node.Status)
	}
	if node.Completion != 100 {
		t.Errorf("expected completion 100, got %d", node.Completion)
	}

	if g.Summary() != "3 nodes • 2 connections" {
		t.Errorf("unexpected summary: %s", g.Summary())
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	payload := []byte(`{"nodes": [{"id": "topic-1", "label": "Basics", "status": "finished", "completion": 140}]}`)

	g := Parse(payload)
	node, ok := g.Node("topic-1")
	if !ok {
		t.Fatal("topic-1 not found")
	}

	// Unrecognized status falls soft into todo
	if node.Status != models.StatusTodo {
		t.Errorf("expected status todo, got %s", node.Status)
	}
	if node.Completion != 100 {
		t.Errorf("expected completion clamped to 100, got %d", node.Completion)
	}
	if node.Difficulty != "medium" {
		t.Errorf("expected default difficulty medium, got %s", node.Difficulty)
	}
	if node.TimeSpent != "0h" {
		t.Errorf("expected default timeSpent 0h, got %s", node.TimeSpent)
	}
	if node.Resources == nil {
		t.Error("expected resources to default to empty slice, got nil")
	}
}

func TestParseDropsNodeMissingIDAndLabel(t *testing.T) {
	payload := []byte(`{
		"nodes": [
			{"id": "topic-1", "label": "Basics"},
			{"status": "done"},
			{"id": "topic-2", "label": "HTTP"}
		]
	}`)

	g := Parse(payload)
	if g.NodeCount() != 2 {
		t.Fatalf("expected malformed node dropped, got %d nodes", g.NodeCount())
	}
	if _, ok := g.Node("topic-1"); !ok {
		t.Error("topic-1 should survive a sibling's malformation")
	}
	if _, ok := g.Node("topic-2"); !ok {
		t.Error("topic-2 should survive a sibling's malformation")
	}
}

func TestParseEmptyAndUndecodablePayloads(t *testing.T) {
	for _, payload := range [][]byte{nil, {}, []byte("not json"), []byte(`"just a string"`)} {
		g := Parse(payload)
		if g.NodeCount() != 0 || g.EdgeCount() != 0 {
			t.Errorf("payload %q: expected empty graph, got %d nodes %d edges",
				payload, g.NodeCount(), g.EdgeCount())
		}
	}
}

func TestParseNestedDataFields(t *testing.T) {
	// Editor exports nest display fields under "data"; flat fields win
	payload := []byte(`{
		"nodes": [
			{"id": "topic-1", "data": {"label": "Nested Label", "status": "done", "timeSpent": "4h"}},
			{"id": "topic-2", "label": "Flat Label", "data": {"label": "Ignored"}}
		]
	}`)

	g := Parse(payload)

	n1, ok := g.Node("topic-1")
	if !ok {
		t.Fatal("topic-1 not found")
	}
	if n1.Label != "Nested Label" {
		t.Errorf("expected nested label promoted, got %q", n1.Label)
	}
	if n1.Status != models.StatusDone {
		t.Errorf("expected nested status promoted, got %s", n1.Status)
	}
	if n1.TimeSpent != "4h" {
		t.Errorf("expected nested timeSpent promoted, got %s", n1.TimeSpent)
	}

	n2, _ := g.Node("topic-2")
	if n2.Label != "Flat Label" {
		t.Errorf("flat label should win over nested, got %q", n2.Label)
	}
}

func TestParseDuplicateIDLastWins(t *testing.T) {
	payload := []byte(`{
		"nodes": [
			{"id": "topic-1", "label": "First"},
			{"id": "topic-1", "label": "Second"}
		]
	}`)

	g := Parse(payload)
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 node after dedup, got %d", g.NodeCount())
	}
	node, _ := g.Node("topic-1")
	if node.Label != "Second" {
		t.Errorf("expected last record to win, got %q", node.Label)
	}
}

func TestResolvedEdgesSkipsDangling(t *testing.T) {
	payload := []byte(`{
		"nodes": [
			{"id": "topic-1", "label": "A"},
			{"id": "topic-2", "label": "B"}
		],
		"edges": [
			{"source": "topic-1", "target": "topic-2"},
			{"source": "topic-1", "target": "ghost"},
			{"source": "ghost", "target": "topic-2"}
		]
	}`)

	g := Parse(payload)

	// Raw count keeps everything, resolved filters dangling references
	if g.EdgeCount() != 3 {
		t.Errorf("expected raw edge count 3, got %d", g.EdgeCount())
	}
	resolved := g.ResolvedEdges()
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved edge, got %d", len(resolved))
	}
	if resolved[0].Source != "topic-1" || resolved[0].Target != "topic-2" {
		t.Errorf("unexpected resolved edge: %+v", resolved[0])
	}
}

func TestFromNodes(t *testing.T) {
	g := FromNodes(
		[]models.FlowNode{
			{ID: "a", Label: "A"},
			{ID: "", Label: ""},
			{ID: "b", Label: "B", Completion: -5},
		},
		[]models.FlowEdge{{Source: "a", Target: "b"}},
	)

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	b, _ := g.Node("b")
	if b.Completion != 0 {
		t.Errorf("expected negative completion clamped to 0, got %d", b.Completion)
	}
	if len(g.ResolvedEdges()) != 1 {
		t.Errorf("expected 1 resolved edge, got %d", len(g.ResolvedEdges()))
	}
}

package canvas

import (
	"errors"
	"reflect"
	"testing"

	"github.com/terra-clan/roadmap-engine/internal/graph"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/progress"
)

func testViewState() *ViewState {
	g := graph.FromNodes(
		[]models.FlowNode{
			{ID: "topic-1", Label: "Basics", Status: models.StatusDone, Content: "Long form content", Resources: []string{"https://example.com"}},
			{ID: "topic-2", Label: "Concurrency", Status: models.StatusInProgress, Description: "Short description"},
			{ID: "topic-3", Label: "Community", RedirectURL: "https://gophers.slack.com/"},
		},
		[]models.FlowEdge{
			{Source: "topic-1", Target: "topic-2"},
			{Source: "topic-2", Target: "ghost"},
		},
	)
	return NewViewState(g, progress.NewTracker(g.NodeIDs(), 0))
}

func TestClickNodeOpensDetail(t *testing.T) {
	v := testViewState()

	panel, err := v.ClickNode("topic-1")
	if err != nil {
		t.Fatalf("ClickNode failed: %v", err)
	}
	if panel.Title != "Basics" {
		t.Errorf("unexpected panel title: %s", panel.Title)
	}
	// Content wins over description when both could apply
	if panel.Body != "Long form content" {
		t.Errorf("unexpected panel body: %s", panel.Body)
	}
	if open, ok := v.OpenNode(); !ok || open != "topic-1" {
		t.Errorf("expected topic-1 open, got %q ok=%v", open, ok)
	}

	// Opening another node replaces the single overlay surface
	panel2, err := v.ClickNode("topic-2")
	if err != nil {
		t.Fatalf("ClickNode failed: %v", err)
	}
	if panel2.Body != "Short description" {
		t.Errorf("description should back the body when content is empty, got %s", panel2.Body)
	}
	if open, _ := v.OpenNode(); open != "topic-2" {
		t.Errorf("expected overlay replaced by topic-2, got %q", open)
	}

	v.Close()
	if _, ok := v.OpenNode(); ok {
		t.Error("overlay should be collapsed after Close")
	}
}

func TestClickNodeUnknownID(t *testing.T) {
	v := testViewState()
	if _, err := v.ClickNode("ghost"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, ok := v.OpenNode(); ok {
		t.Error("failed click must not open an overlay")
	}
}

func TestClickRedirectDoesNotOpenDetail(t *testing.T) {
	v := testViewState()

	url, ok := v.ClickRedirect("topic-3")
	if !ok {
		t.Fatal("expected redirect URL for topic-3")
	}
	if url != "https://gophers.slack.com/" {
		t.Errorf("unexpected redirect URL: %s", url)
	}
	// The redirect click is isolated: no detail overlay opens
	if open, openOk := v.OpenNode(); openOk {
		t.Errorf("redirect click must not open detail, but %q is open", open)
	}

	// Nodes without a link report no redirect
	if _, ok := v.ClickRedirect("topic-1"); ok {
		t.Error("topic-1 has no redirect URL")
	}
	if _, ok := v.ClickRedirect("ghost"); ok {
		t.Error("unknown node has no redirect URL")
	}
}

func TestClickBodyOfRedirectNodeOpensDetailOnly(t *testing.T) {
	v := testViewState()

	// Clicking the body (not the glyph) of a node with a redirect URL
	// opens the detail panel; the external URL is not auto-opened
	panel, err := v.ClickNode("topic-3")
	if err != nil {
		t.Fatalf("ClickNode failed: %v", err)
	}
	if panel.Title != "Community" {
		t.Errorf("unexpected panel title: %s", panel.Title)
	}
	if open, ok := v.OpenNode(); !ok || open != "topic-3" {
		t.Errorf("expected topic-3 detail open, got %q ok=%v", open, ok)
	}
}

func TestToggleFullscreenPreservesFraming(t *testing.T) {
	v := testViewState()
	v.SetFraming(Framing{Zoom: 1.5, OffsetX: 40, OffsetY: -12})

	if !v.ToggleFullscreen() {
		t.Fatal("expected fullscreen on")
	}
	if got := v.Framing(); got != (Framing{Zoom: 1.5, OffsetX: 40, OffsetY: -12}) {
		t.Errorf("framing lost on fullscreen entry: %+v", got)
	}

	if v.ToggleFullscreen() {
		t.Fatal("expected fullscreen off")
	}
	if got := v.Framing(); got != (Framing{Zoom: 1.5, OffsetX: 40, OffsetY: -12}) {
		t.Errorf("framing lost on fullscreen exit: %+v", got)
	}
}

func TestNodeViewsAnnotation(t *testing.T) {
	v := testViewState()
	v.tracker.ToggleNode("topic-1")

	views := v.NodeViews()
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}

	first := views[0]
	if first.Ordinal != "1" {
		t.Errorf("expected ordinal 1, got %s", first.Ordinal)
	}
	if first.Appearance.Label != "Done" {
		t.Errorf("expected Done appearance, got %s", first.Appearance.Label)
	}
	if !first.Completed {
		t.Error("topic-1 should be marked completed")
	}
	if views[1].Completed {
		t.Error("topic-2 should not be marked completed")
	}
	if !views[2].HasRedirect {
		t.Error("topic-3 should carry the redirect glyph")
	}
}

func TestNodeViewsArePure(t *testing.T) {
	v := testViewState()
	before := v.NodeViews()

	// UI-only state changes must not disturb the render records
	v.ClickNode("topic-2")
	v.ToggleFullscreen()
	v.SetFraming(Framing{Zoom: 3})

	after := v.NodeViews()
	if !reflect.DeepEqual(before, after) {
		t.Error("node views changed after unrelated UI state changes")
	}
}

func TestEdgesOmitDangling(t *testing.T) {
	v := testViewState()
	edges := v.Edges()
	if len(edges) != 1 {
		t.Fatalf("expected 1 resolvable edge, got %d", len(edges))
	}
	if edges[0].Source != "topic-1" || edges[0].Target != "topic-2" {
		t.Errorf("unexpected edge: %+v", edges[0])
	}
}

type stubCanvas struct {
	views []NodeView
	edges []models.FlowEdge
	err   error
}

func (s *stubCanvas) Render(views []NodeView, edges []models.FlowEdge) ([]byte, error) {
	s.views = views
	s.edges = edges
	if s.err != nil {
		return nil, s.err
	}
	return []byte("raster"), nil
}

func TestExportDelegatesToCanvas(t *testing.T) {
	v := testViewState()
	stub := &stubCanvas{}

	out, err := v.Export(stub)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if string(out) != "raster" {
		t.Errorf("unexpected export bytes: %q", out)
	}
	if len(stub.views) != 3 {
		t.Errorf("canvas received %d views, want 3", len(stub.views))
	}
	if len(stub.edges) != 1 {
		t.Errorf("canvas received %d edges, want 1", len(stub.edges))
	}

	stub.err = errors.New("raster backend down")
	if _, err := v.Export(stub); err == nil {
		t.Error("expected export error to propagate to the caller")
	}
}

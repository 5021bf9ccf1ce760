// Package canvas mediates flowchart rendering and node-level interaction.
//
// The view is read-only over layout: nodes are not draggable or
// connectable, only click-to-open-detail is permitted. Node positions
// come from the admin-authored graph and must not drift per viewer.
package canvas

import (
	"errors"

	"github.com/terra-clan/roadmap-engine/internal/graph"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/progress"
	"github.com/terra-clan/roadmap-engine/internal/status"
)

var ErrNodeNotFound = errors.New("canvas: node not found")

// NodeView is the annotated per-node render record. It is a pure
// function of (graph, completion set); re-rendering after an unrelated
// state change reproduces identical views for unaffected nodes.
type NodeView struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Ordinal     string            `json:"ordinal"`
	Appearance  status.Appearance `json:"appearance"`
	Completion  int               `json:"completion"`
	Difficulty  string            `json:"difficulty"`
	TimeSpent   string            `json:"timeSpent"`
	Completed   bool              `json:"completed"`
	HasRedirect bool              `json:"hasRedirect"`
}

// DetailPanel is the overlay content shown when a node body is clicked
type DetailPanel struct {
	NodeID     string            `json:"nodeId"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Resources  []string          `json:"resources"`
	Appearance status.Appearance `json:"appearance"`
}

// Framing is the pan/zoom fit-view state of the canvas
type Framing struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Canvas rasterizes annotated nodes and edges. The concrete rendering
// technology is swappable without touching status or progress logic.
type Canvas interface {
	Render(views []NodeView, edges []models.FlowEdge) ([]byte, error)
}

// ViewState owns the mutable UI state of one detail-view instance:
// the active detail overlay and the fullscreen flag. It is not shared
// between viewers; exactly one writer exists per instance.
type ViewState struct {
	graph      *graph.Graph
	tracker    *progress.Tracker
	openNode   string
	fullscreen bool
	framing    Framing
}

// NewViewState creates the interaction state for a parsed graph
func NewViewState(g *graph.Graph, t *progress.Tracker) *ViewState {
	return &ViewState{
		graph:   g,
		tracker: t,
		framing: Framing{Zoom: 1},
	}
}

// ClickNode handles a click on a node body: the detail overlay opens
// for that node. Only one overlay surface exists, so opening node B
// while A's panel is visible implicitly replaces A's panel.
func (v *ViewState) ClickNode(id string) (*DetailPanel, error) {
	node, ok := v.graph.Node(id)
	if !ok {
		return nil, ErrNodeNotFound
	}

	v.openNode = id
	return &DetailPanel{
		NodeID:     node.ID,
		Title:      node.Label,
		Body:       node.DetailText(),
		Resources:  node.Resources,
		Appearance: status.For(node.Status),
	}, nil
}

// ClickRedirect handles a click on the external-link glyph. It returns
// the URL to open in a new browsing context and stops there: the click
// must not also open the node's detail overlay.
func (v *ViewState) ClickRedirect(id string) (string, bool) {
	node, ok := v.graph.Node(id)
	if !ok || node.RedirectURL == "" {
		return "", false
	}
	return node.RedirectURL, true
}

// Close collapses the detail overlay (explicit close or backdrop click)
func (v *ViewState) Close() {
	v.openNode = ""
}

// OpenNode returns the node whose detail overlay is visible, if any
func (v *ViewState) OpenNode() (string, bool) {
	return v.openNode, v.openNode != ""
}

// ToggleFullscreen swaps the bounded container for a full-viewport
// overlay of the identical graph. The current fit-view framing is
// preserved on entry and exit.
func (v *ViewState) ToggleFullscreen() bool {
	v.fullscreen = !v.fullscreen
	return v.fullscreen
}

// Fullscreen reports whether the full-viewport overlay is active
func (v *ViewState) Fullscreen() bool {
	return v.fullscreen
}

// Framing returns the preserved pan/zoom state
func (v *ViewState) Framing() Framing {
	return v.framing
}

// SetFraming records a pan/zoom change from the hosting canvas
func (v *ViewState) SetFraming(f Framing) {
	v.framing = f
}

// NodeViews computes the annotated render records for every node
func (v *ViewState) NodeViews() []NodeView {
	nodes := v.graph.Nodes()
	views := make([]NodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, NodeView{
			ID:          n.ID,
			Label:       n.Label,
			Ordinal:     status.OrdinalLabel(n.ID),
			Appearance:  status.For(n.Status),
			Completion:  n.Completion,
			Difficulty:  n.Difficulty,
			TimeSpent:   n.TimeSpent,
			Completed:   v.tracker.IsNodeDone(n.ID),
			HasRedirect: n.HasRedirect(),
		})
	}
	return views
}

// Edges returns only the resolvable edges; dangling references are
// omitted rather than crashing the paint.
func (v *ViewState) Edges() []models.FlowEdge {
	return v.graph.ResolvedEdges()
}

// Export rasterizes the current canvas through the given backend.
// Export is a convenience, not a critical path; the caller logs and
// swallows failures instead of surfacing a crash.
func (v *ViewState) Export(c Canvas) ([]byte, error) {
	return c.Render(v.NodeViews(), v.Edges())
}

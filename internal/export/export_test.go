package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/terra-clan/roadmap-engine/internal/canvas"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/status"
)

func TestPNGCanvasRender(t *testing.T) {
	c := NewPNGCanvas()

	views := []canvas.NodeView{
		{ID: "topic-1", Label: "Basics", Appearance: status.For(models.StatusDone), Completion: 100},
		{ID: "topic-2", Label: "Concurrency", Appearance: status.For(models.StatusInProgress), Completion: 40},
		{ID: "topic-3", Label: "HTTP", Appearance: status.For(models.StatusTodo)},
	}
	edges := []models.FlowEdge{
		{Source: "topic-1", Target: "topic-2"},
		{Source: "topic-2", Target: "topic-3"},
	}

	raster, err := c.Render(views, edges)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(raster))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		t.Errorf("degenerate image bounds: %v", bounds)
	}
}

func TestPNGCanvasRenderEmpty(t *testing.T) {
	c := NewPNGCanvas()
	if _, err := c.Render(nil, nil); err == nil {
		t.Error("rendering an empty graph should fail")
	}
}

func TestPNGCanvasSkipsUnknownEdgeEndpoints(t *testing.T) {
	c := NewPNGCanvas()
	views := []canvas.NodeView{
		{ID: "topic-1", Appearance: status.For(models.StatusTodo)},
	}
	// Edge to a node the layout never placed must not panic
	edges := []models.FlowEdge{{Source: "topic-1", Target: "ghost"}}

	if _, err := c.Render(views, edges); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#22c55e")
	if err != nil {
		t.Fatalf("parseHex failed: %v", err)
	}
	if c.R != 0x22 || c.G != 0xc5 || c.B != 0x5e || c.A != 0xff {
		t.Errorf("unexpected color: %+v", c)
	}

	for _, bad := range []string{"", "#fff", "22c55e", "#gggggg"} {
		if _, err := parseHex(bad); err == nil {
			t.Errorf("parseHex(%q) should fail", bad)
		}
	}
}

func testRoadmap() *models.Roadmap {
	return &models.Roadmap{
		ID:            "go-backend",
		Title:         "Go Backend Developer",
		Description:   "From basics to production.",
		Difficulty:    "medium",
		EstimatedTime: "12 weeks",
		Steps: []models.Step{
			{Title: "Language fundamentals", Description: "Syntax and types", Resources: []string{"https://go.dev/tour/"}},
			{Title: "Concurrency"},
		},
	}
}

func TestStepsDocumentText(t *testing.T) {
	doc, contentType, err := StepsDocument(testRoadmap(), FormatText)
	if err != nil {
		t.Fatalf("StepsDocument failed: %v", err)
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type: %s", contentType)
	}

	text := string(doc)
	for _, want := range []string{
		"Go Backend Developer",
		"Difficulty: medium",
		"Estimated time: 12 weeks",
		"1. Language fundamentals",
		"2. Concurrency",
		"- https://go.dev/tour/",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %q:\n%s", want, text)
		}
	}

	// Empty format defaults to text
	defDoc, defType, err := StepsDocument(testRoadmap(), "")
	if err != nil {
		t.Fatalf("StepsDocument with empty format failed: %v", err)
	}
	if defType != contentType || string(defDoc) != text {
		t.Error("empty format should behave like text")
	}
}

func TestStepsDocumentHTML(t *testing.T) {
	doc, contentType, err := StepsDocument(testRoadmap(), FormatHTML)
	if err != nil {
		t.Fatalf("StepsDocument failed: %v", err)
	}
	if contentType != "text/html; charset=utf-8" {
		t.Errorf("unexpected content type: %s", contentType)
	}

	html := string(doc)
	if !strings.Contains(html, "<h1>Go Backend Developer</h1>") {
		t.Errorf("document missing title heading:\n%s", html)
	}
	if !strings.Contains(html, "<strong>Language fundamentals</strong>") {
		t.Errorf("document missing step:\n%s", html)
	}
}

func TestStepsDocumentUnknownFormat(t *testing.T) {
	if _, _, err := StepsDocument(testRoadmap(), "pdf"); err == nil {
		t.Error("unsupported format should fail")
	}
}

package models

import (
	"encoding/json"
	"time"
)

// NodeStatus represents the learning state of a flowchart node
type NodeStatus string

const (
	StatusTodo       NodeStatus = "todo"
	StatusInProgress NodeStatus = "in-progress"
	StatusDone       NodeStatus = "done"
)

// Normalize maps any unrecognized status value to todo
func (s NodeStatus) Normalize() NodeStatus {
	switch s {
	case StatusInProgress, StatusDone:
		return s
	default:
		return StatusTodo
	}
}

// IsDone returns true if the node has been finished
func (s NodeStatus) IsDone() bool {
	return s == StatusDone
}

// FlowNode represents one box in a roadmap flowchart
type FlowNode struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Status      NodeStatus `json:"status"`
	Completion  int        `json:"completion"`
	Difficulty  string     `json:"difficulty"`
	TimeSpent   string     `json:"timeSpent"`
	Resources   []string   `json:"resources"`
	RedirectURL string     `json:"redirectUrl,omitempty"`
}

// DetailText returns the long-form text for the detail panel.
// Content takes precedence over Description when both are set.
func (n *FlowNode) DetailText() string {
	if n.Content != "" {
		return n.Content
	}
	return n.Description
}

// HasRedirect returns true if the node carries an external link
func (n *FlowNode) HasRedirect() bool {
	return n.RedirectURL != ""
}

// FlowEdge represents a directed connector between two flowchart nodes
type FlowEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Step represents one entry of the linear learning-steps checklist.
// Steps are a separate progress dimension from flowchart nodes.
type Step struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Resources   []string `json:"resources,omitempty"`
}

// Roadmap represents a learning path record
type Roadmap struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Content       string          `json:"content,omitempty"`
	Difficulty    string          `json:"difficulty"`
	EstimatedTime string          `json:"estimatedTime,omitempty"`
	Technologies  []string        `json:"technologies,omitempty"`
	Steps         []Step          `json:"steps"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	EnrolledCount int             `json:"enrolledCount"`
	Downloads     int             `json:"downloads"`
	Shares        int             `json:"shares"`
	Image         string          `json:"image,omitempty"`
	FlowchartData json.RawMessage `json:"flowchartData,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// HasFlowchart returns true if the roadmap carries graph data.
// Absence means the detail view degrades to the linear steps only.
func (r *Roadmap) HasFlowchart() bool {
	return len(r.FlowchartData) > 0 && string(r.FlowchartData) != "null"
}

// ListFilters defines filters for listing roadmaps
type ListFilters struct {
	Difficulty string
	Technology string
	Limit      int
	Offset     int
}

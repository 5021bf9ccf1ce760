package models

import "time"

// ProgressSnapshot captures a learner's completion state for one roadmap.
// Node ids and step indices are two independent dimensions over the same
// roadmap; marking a step complete never marks a node complete and vice versa.
type ProgressSnapshot struct {
	CompletedNodeIDs     []string `json:"completedNodeIds"`
	CompletedStepIndices []int    `json:"completedStepIndices"`
}

// ProgressSession is an explicitly saved completion snapshot.
// Progress is never synced per toggle; the learner saves deliberately.
type ProgressSession struct {
	ID           string           `json:"id"`
	RoadmapID    string           `json:"roadmapId"`
	UserID       string           `json:"userId"`
	Snapshot     ProgressSnapshot `json:"snapshot"`
	Progress     int              `json:"progress"`
	StepProgress int              `json:"stepProgress"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// SaveProgressRequest represents an explicit progress save payload
type SaveProgressRequest struct {
	CompletedNodeIDs     []string `json:"completedNodeIds"`
	CompletedStepIndices []int    `json:"completedStepIndices"`
}

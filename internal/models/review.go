package models

import "time"

// ReviewEntry represents one submitted roadmap review.
// Username and CreatedAt are stamped server-side on submission;
// the collection is append-only from the learner's perspective.
type ReviewEntry struct {
	ID        string    `json:"id"`
	RoadmapID string    `json:"roadmapId"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmitReviewRequest represents a review submission payload
type SubmitReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review,omitempty"`
}

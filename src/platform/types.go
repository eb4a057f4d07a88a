package platform

import "time"

// Candidate is a unit of sourced content under consideration for engagement.
// Candidates are fetched per run and never persisted.
type Candidate struct {
	ID           string
	Text         string
	AuthorID     string
	AuthorHandle string
	Language     string
	Likes        int
	Reposts      int
	Replies      int
	Quotes       int
	CreatedAt    time.Time
}

// TotalEngagement sums the public counters used for ordering and scoring.
func (c Candidate) TotalEngagement() int {
	return c.Likes + c.Reposts + c.Replies
}

// ActionResult carries the platform-assigned id of a created artifact.
type ActionResult struct {
	ID string
}

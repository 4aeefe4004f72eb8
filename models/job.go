package models

import "time"

// JobCategory classifies the kind of cleanup work a job involves
type JobCategory string

const (
	JobCategoryTrash     JobCategory = "trash"
	JobCategoryPollution JobCategory = "pollution"
	JobCategoryReporting JobCategory = "reporting"
)

// Urgency grades how severe a reported debris situation is
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// UrgencyRank orders urgencies most severe first; the feed sorts ascending on
// this value, so critical jobs surface at the top.
func UrgencyRank(u Urgency) int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 3
	}
}

// Job is an ephemeral cleanup microjob synthesized by the feed generator.
// Jobs are never persisted — only claims against their IDs are.
type Job struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Location    string      `json:"location"`
	Reward      int         `json:"reward"`
	Duration    int         `json:"duration"` // minutes
	Category    JobCategory `json:"category"`
	Urgency     Urgency     `json:"urgency"`
	Distance    string      `json:"distance"` // simulated, e.g. "3.2 mi"
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	Description string      `json:"description"`
	ReportedAt  time.Time   `json:"reported_at"`
}

package feed

import (
	"math"
	"time"

	"github.com/ppiankov/crisisverify/internal/model"
)

const (
	// SourceUserReport is the source label of posts created from submissions
	SourceUserReport = "User Report"

	// ReasonAnalyzing is shown while verification is in flight
	ReasonAnalyzing = "AI is analyzing reliability..."
)

// Post is one entry in the incident feed
type Post struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Timestamp   time.Time    `json:"timestamp"`
	Status      model.Status `json:"status"`
	Confidence  float64      `json:"confidence"`
	Source      string       `json:"source"`
	Reason      string       `json:"reason"`
	Final       bool         `json:"final"` // Set once a verdict has been applied
}

// Badge returns the status label shown on the post
func (p Post) Badge() string {
	switch p.Status {
	case model.StatusVerified:
		return "Verified"
	case model.StatusScam:
		return "Potential Scam"
	default:
		if p.Final {
			return "Unverified"
		}
		return "Analyzing..."
	}
}

// BadgeClass returns the style class of the status badge
func (p Post) BadgeClass() string {
	switch p.Status {
	case model.StatusVerified:
		return "badge-verified"
	case model.StatusScam:
		return "badge-scam"
	default:
		return "badge-pending"
	}
}

// MeterColor returns the color of the confidence meter
func (p Post) MeterColor() string {
	switch p.Status {
	case model.StatusVerified:
		return "success"
	case model.StatusScam:
		return "danger"
	default:
		return "warning"
	}
}

// Percent returns the confidence as a whole percentage
func (p Post) Percent() int {
	return int(math.Round(p.Confidence * 100))
}

// SeedPost is the official post the feed starts with
func SeedPost(now time.Time) Post {
	return Post{
		ID:          "seed-1",
		Title:       "Flooding in Sector 4",
		Description: "Water levels represent a significant danger. Avoid area.",
		Location:    "Sector 4",
		Timestamp:   now,
		Status:      model.StatusVerified,
		Confidence:  0.98,
		Source:      "Official Sensor Network",
		Final:       true,
	}
}

func pendingPost(id string, sub model.Submission, now time.Time) Post {
	return Post{
		ID:          id,
		Title:       sub.Type + " at " + sub.Location,
		Description: sub.Description,
		Location:    sub.Location,
		Timestamp:   now,
		Status:      model.StatusPending,
		Confidence:  0,
		Source:      SourceUserReport,
		Reason:      ReasonAnalyzing,
	}
}

package model

import "strings"

// ReferenceReport is an authoritative record that user submissions are checked against.
// Reports are loaded once and never mutated afterwards.
type ReferenceReport struct {
	ID          string      `json:"id" yaml:"id"`                 // Citation identifier (string or integer in source data)
	Event       string      `json:"event" yaml:"event"`           // Short event name (e.g., "Flooding")
	Location    string      `json:"location" yaml:"location"`     // Where the event applies
	Details     string      `json:"details" yaml:"details"`       // Free-text description
	GroundTruth GroundTruth `json:"status" yaml:"status"`         // Authoritative classification
	Confidence  float64     `json:"confidence" yaml:"confidence"` // Authority certainty in [0,1]
}

// Content returns the lower-cased searchable text of the report
func (r ReferenceReport) Content() string {
	return strings.ToLower(r.Event + " " + r.Location + " " + r.Details)
}

// GroundTruth is the authoritative classification of the underlying real-world event
type GroundTruth string

const (
	GroundTruthConfirmed GroundTruth = "confirmed" // Event is happening
	GroundTruthFalse     GroundTruth = "false"     // Event is NOT happening
	GroundTruthScam      GroundTruth = "scam"      // Known misinformation pattern
)

// Valid reports whether g is one of the known ground truth labels
func (g GroundTruth) Valid() bool {
	switch g {
	case GroundTruthConfirmed, GroundTruthFalse, GroundTruthScam:
		return true
	default:
		return false
	}
}

// ParseGroundTruth converts a raw label into a GroundTruth (case-insensitive)
func ParseGroundTruth(raw string) (GroundTruth, bool) {
	g := GroundTruth(strings.ToLower(strings.TrimSpace(raw)))
	return g, g.Valid()
}

// Query is a single user submission to verify. It is never persisted.
type Query struct {
	Text     string `json:"text"`
	Location string `json:"location"`
}

// Submission is an incident report entered by a user
type Submission struct {
	Type        string `json:"type"`        // Incident type (e.g., "Flood")
	Location    string `json:"location"`    // Where it is happening
	Description string `json:"description"` // Free-text description
}

// Query returns the matcher input for this submission
func (s Submission) Query() Query {
	return Query{Text: s.Description, Location: s.Location}
}

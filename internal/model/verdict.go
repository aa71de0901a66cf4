package model

// Status is the user-facing verdict classification
type Status string

const (
	StatusVerified Status = "verified" // Corroborated by a confirmed reference report
	StatusScam     Status = "scam"     // Matches a scam or false reference report
	StatusPending  Status = "pending"  // Indeterminate, flagged for manual review
)

// Verdict is the final classification delivered to the caller.
// This shape is the only contract the rendering layer depends on.
type Verdict struct {
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Match is the transparent scoring breakdown behind a verdict
type Match struct {
	ReportID  string                 `json:"report_id,omitempty"` // Best matching report (empty if none)
	Score     float64                `json:"score"`               // matchCount / max(tokenCount, 1)
	Threshold float64                `json:"threshold"`           // Score must exceed this to use the match
	Accepted  bool                   `json:"accepted"`            // Whether the match drove the verdict
	Data      map[string]interface{} `json:"data,omitempty"`      // Inputs and formula
}

// Evaluation couples a verdict with the scoring breakdown that produced it
type Evaluation struct {
	Query   Query   `json:"query"`
	Verdict Verdict `json:"verdict"`
	Match   Match   `json:"match"`
}

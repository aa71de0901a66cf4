package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ppiankov/crisisverify/internal/model"
)

// Store is an immutable, ordered collection of reference reports.
// It is safe for concurrent readers; nothing mutates it after construction.
type Store struct {
	source      string
	reports     []model.ReferenceReport
	fingerprint string
}

// NewStore builds a store from reports, preserving their order
func NewStore(source string, reports []model.ReferenceReport) *Store {
	owned := make([]model.ReferenceReport, len(reports))
	copy(owned, reports)

	return &Store{
		source:      source,
		reports:     owned,
		fingerprint: fingerprint(owned),
	}
}

// Empty returns a store with no reports. Every verdict against it is indeterminate.
func Empty() *Store {
	return NewStore("", nil)
}

// Reports returns all reports in their original order
func (s *Store) Reports() []model.ReferenceReport {
	out := make([]model.ReferenceReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Len returns the number of reports
func (s *Store) Len() int {
	return len(s.reports)
}

// Source returns where the reports were loaded from (empty for an empty fallback store)
func (s *Store) Source() string {
	return s.source
}

// Fingerprint identifies the store contents; equal contents share a fingerprint
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

func fingerprint(reports []model.ReferenceReport) string {
	data, err := json.Marshal(reports)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

package domain

import "errors"

// ErrNoStoredResult is returned when no previous run has been stored.
var ErrNoStoredResult = errors.New("no stored audit result; run an audit first")

// StoredResponse is the last successful response together with the run that
// produced it.
type StoredResponse struct {
	RunID    string        `json:"run_id"`
	File     string        `json:"file"`
	APIBase  string        `json:"api_base"`
	SavedAt  string        `json:"saved_at"`
	Response AuditResponse `json:"response"`
}

// IsStale reports whether the stored response came from a different service.
func (s *StoredResponse) IsStale(apiBase string) bool {
	return s.APIBase != "" && apiBase != "" && s.APIBase != apiBase
}

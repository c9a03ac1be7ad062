package domain

// RunEntry is one line of the audit run history.
type RunEntry struct {
	Timestamp      string      `json:"timestamp"`
	RunID          string      `json:"run_id"`
	File           string      `json:"file"`
	DocumentCommit string      `json:"document_commit,omitempty"`
	State          RunState    `json:"state"`
	StatusCode     int         `json:"status_code,omitempty"`
	ContentKind    ContentKind `json:"content_kind,omitempty"`
	Violations     int         `json:"violations"`
}

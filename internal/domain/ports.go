package domain

import "context"

// AuditClient submits documents to the audit service.
type AuditClient interface {
	Submit(ctx context.Context, req AuditRequest) (*AuditResponse, error)
}

// RunHistory persists one entry per settled audit run.
type RunHistory interface {
	Save(dir string, entry RunEntry) error
	Load(dir string) ([]RunEntry, error)
}

// ResponseStore keeps the last successful response so artifacts can be
// produced again without a new request.
type ResponseStore interface {
	Load(dir string) (*StoredResponse, error)
	Save(dir string, stored *StoredResponse) error
	Invalidate(dir string) error
}

// GitInfo reports repository state for the directory holding a document.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
}

// SpreadsheetBuilder produces the audit.xlsx artifact from violations.
type SpreadsheetBuilder interface {
	Build(violations []Violation) (Artifact, error)
}

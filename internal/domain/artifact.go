package domain

import "context"

// ArtifactKind identifies a downloadable artifact derived from a run.
type ArtifactKind string

const (
	ArtifactJSON        ArtifactKind = "json"
	ArtifactMarkdown    ArtifactKind = "markdown"
	ArtifactSpreadsheet ArtifactKind = "spreadsheet"
)

// Fixed filenames and media types per artifact kind.
const (
	JSONFilename         = "audit.json"
	JSONMediaType        = "application/json"
	MarkdownFilename     = "audit.md"
	MarkdownMediaType    = "text/markdown"
	SpreadsheetFilename  = "audit.xlsx"
	SpreadsheetMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Artifact is a client-generated file. It is never sent back to the service.
type Artifact struct {
	Kind      ArtifactKind `json:"kind"`
	Content   []byte       `json:"-"`
	Filename  string       `json:"filename"`
	MediaType string       `json:"media_type"`
}

// NewJSONArtifact wraps re-serialized result JSON.
func NewJSONArtifact(content []byte) Artifact {
	return Artifact{Kind: ArtifactJSON, Content: content, Filename: JSONFilename, MediaType: JSONMediaType}
}

// NewMarkdownArtifact wraps markdown text verbatim.
func NewMarkdownArtifact(text string) Artifact {
	return Artifact{Kind: ArtifactMarkdown, Content: []byte(text), Filename: MarkdownFilename, MediaType: MarkdownMediaType}
}

// ParseArtifactKind accepts the kind names and the common short aliases used on
// the command line.
func ParseArtifactKind(s string) (ArtifactKind, bool) {
	switch s {
	case "json":
		return ArtifactJSON, true
	case "md", "markdown":
		return ArtifactMarkdown, true
	case "xlsx", "spreadsheet":
		return ArtifactSpreadsheet, true
	default:
		return "", false
	}
}

// ArtifactSink stores an artifact and returns where it ended up.
type ArtifactSink interface {
	Save(ctx context.Context, artifact Artifact) (string, error)
}

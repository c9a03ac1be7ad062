// Package docfile loads documents to audit and detects their media type.
package docfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/medqc/stacaudit/internal/domain"
)

// PDFMediaType is the media type the audit service expects.
const PDFMediaType = "application/pdf"

// ErrNotPDF is returned by RequirePDF for documents of another type.
var ErrNotPDF = errors.New("document is not a PDF")

// Load reads path into a Document.
func Load(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromBytes(path, data), nil
}

// FromBytes wraps uploaded content. The media type is detected from the
// content, not taken from the file name.
func FromBytes(name string, data []byte) *domain.Document {
	doc := &domain.Document{Name: name, Data: data}
	if len(data) > 0 {
		doc.MediaType = mimetype.Detect(data).String()
	}
	return doc
}

// RequirePDF rejects documents whose content is not a PDF. The service
// reports the same problem, but only after the upload.
func RequirePDF(doc *domain.Document) error {
	if doc == nil || len(doc.Data) == 0 {
		return nil
	}
	if !mimetype.Detect(doc.Data).Is(PDFMediaType) {
		return fmt.Errorf("%s: %w (detected %s)", doc.Name, ErrNotPDF, doc.MediaType)
	}
	return nil
}

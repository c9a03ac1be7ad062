// Package sheet builds the spreadsheet artifact listing a run's violations.
package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/medqc/stacaudit/internal/domain"
)

// SheetName is the worksheet holding the violations.
const SheetName = "Violations"

var header = []interface{}{"Rule", "Title", "Severity", "Evidence"}

// Builder implements domain.SpreadsheetBuilder with excelize.
type Builder struct{}

func New() *Builder { return &Builder{} }

// Build returns audit.xlsx with one row per violation, in received order.
func (b *Builder) Build(violations []domain.Violation) (domain.Artifact, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return domain.Artifact{}, fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return domain.Artifact{}, fmt.Errorf("writing header: %w", err)
	}

	for i, v := range violations {
		evidence := ""
		if v.Evidence != nil {
			evidence = *v.Evidence
		}
		row := []interface{}{v.ID, v.Title, v.Severity, evidence}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return domain.Artifact{}, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return domain.Artifact{}, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("encoding spreadsheet: %w", err)
	}
	return domain.Artifact{
		Kind:      domain.ArtifactSpreadsheet,
		Content:   buf.Bytes(),
		Filename:  domain.SpreadsheetFilename,
		MediaType: domain.SpreadsheetMediaType,
	}, nil
}

// Rows reads the violation rows back from a spreadsheet artifact, without the header.
func Rows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotAnObject is returned when a structured body is valid JSON but not an object.
var ErrNotAnObject = errors.New("structured result is not a JSON object")

// Field names of the structured result that carry violations.
const (
	SourceViolations        = "violations"
	SourceViolationsCompact = "violations_compact"
)

// StructuredResult is the parsed form of a structured audit response. Every
// field is optional; Raw keeps the object exactly as received.
type StructuredResult struct {
	Violations      []Violation      `json:"violations,omitempty"`
	ViolationSource string           `json:"violation_source,omitempty"`
	LLM             *DiagnosticsMeta `json:"llm,omitempty"`
	AssessedRuleIDs []string         `json:"assessed_rule_ids,omitempty"`
	PrettyText      string           `json:"pretty_text,omitempty"`
	Summary         *Summary         `json:"summary,omitempty"`
	Raw             json.RawMessage  `json:"-"`
}

// Violation is a single rule-check finding in canonical form.
type Violation struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Severity string  `json:"severity"`
	Evidence *string `json:"evidence,omitempty"`
}

// Heading is the one-line label of a violation: identifier and title.
func (v Violation) Heading() string {
	return v.ID + " — " + v.Title
}

// DiagnosticsMeta describes how the service ran its analysis.
type DiagnosticsMeta struct {
	Mode                *string         `json:"mode,omitempty"`
	Model               *string         `json:"model,omitempty"`
	Supports            json.RawMessage `json:"supports,omitempty"`
	DurationMS          *float64        `json:"duration_ms,omitempty"`
	Chunks              *float64        `json:"chunks,omitempty"`
	ParseErrors         *float64        `json:"parse_errors,omitempty"`
	AssessedEmptyChunks *float64        `json:"assessed_empty_chunks,omitempty"`
	AssessedWeakChunks  *float64        `json:"assessed_weak_chunks,omitempty"`
	Error               *string         `json:"error,omitempty"`
	Hint                *string         `json:"hint,omitempty"`
}

// Summary is the counts block of the service's human-readable report.
type Summary struct {
	Passes     int            `json:"passes"`
	Violations int            `json:"violations"`
	BySeverity map[string]int `json:"by_severity,omitempty"`
}

// ParseStructured decodes a structured response body. Only a body that is not
// a JSON object is an error; fields of unexpected shape are treated as absent.
func ParseStructured(body []byte) (*StructuredResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotAnObject
		}
		return nil, fmt.Errorf("parsing structured result: %w", err)
	}
	if fields == nil {
		// "null" decodes into a nil map.
		return nil, ErrNotAnObject
	}

	result := &StructuredResult{Raw: json.RawMessage(bytes.TrimSpace(body))}
	result.Violations, result.ViolationSource = normalizeViolations(fields)
	result.LLM = parseDiagnostics(fields["meta"])
	result.AssessedRuleIDs = parseStringList(fields["assessed_rule_ids"])
	if s, ok := jsonString(fields["pretty_text"]); ok {
		result.PrettyText = s
	}
	result.Summary = parseSummary(fields["summary"])

	return result, nil
}

// Indented re-serializes the raw object with two-space indentation, keeping
// key order and values as received.
func (r *StructuredResult) Indented() ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting structured result: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeViolations picks the authoritative violation list: "violations"
// whenever it is present and non-null, "violations_compact" otherwise.
func normalizeViolations(fields map[string]json.RawMessage) ([]Violation, string) {
	source := ""
	var raw json.RawMessage
	for _, name := range []string{SourceViolations, SourceViolationsCompact} {
		if v, ok := fields[name]; ok && !isNull(v) {
			source, raw = name, v
			break
		}
	}
	if source == "" {
		return nil, ""
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Present but not a list: authoritative, with nothing to show.
		return nil, source
	}

	out := make([]Violation, 0, len(items))
	for _, item := range items {
		out = append(out, parseViolation(item))
	}
	return out, source
}

func parseViolation(raw json.RawMessage) Violation {
	var fields map[string]json.RawMessage
	_ = json.Unmarshal(raw, &fields)

	var v Violation
	if id, ok := scalarString(fields["rule_id"]); ok {
		v.ID = id
	} else if id, ok := scalarString(fields["id"]); ok {
		v.ID = id
	}
	v.Title, _ = scalarString(fields["title"])
	sev, _ := scalarString(fields["severity"])
	v.Severity = strings.ToLower(sev)
	if ev, ok := scalarString(fields["evidence"]); ok {
		v.Evidence = &ev
	}
	return v
}

func parseDiagnostics(raw json.RawMessage) *DiagnosticsMeta {
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw, &meta); err != nil || meta == nil {
		return nil
	}
	var llm map[string]json.RawMessage
	if err := json.Unmarshal(meta["llm"], &llm); err != nil || llm == nil {
		return nil
	}

	d := &DiagnosticsMeta{
		Mode:                optionalString(llm["mode"]),
		Model:               optionalString(llm["model"]),
		DurationMS:          optionalNumber(llm["duration_ms"]),
		Chunks:              optionalNumber(llm["chunks"]),
		ParseErrors:         optionalNumber(llm["parse_errors"]),
		AssessedEmptyChunks: optionalNumber(llm["assessed_empty_chunks"]),
		AssessedWeakChunks:  optionalNumber(llm["assessed_weak_chunks"]),
		Error:               optionalString(llm["error"]),
		Hint:                optionalString(llm["hint"]),
	}
	if s, ok := llm["supports"]; ok && !isNull(s) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, s); err == nil {
			d.Supports = buf.Bytes()
		}
	}
	return d
}

func parseStringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := scalarString(item)
		out = append(out, s)
	}
	return out
}

func parseSummary(raw json.RawMessage) *Summary {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// jsonString returns raw as a string only when it is a non-empty JSON string.
func jsonString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// scalarString converts a JSON scalar to display text. Null, empty strings and
// non-scalars report false.
func scalarString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func optionalString(raw json.RawMessage) *string {
	s, ok := scalarString(raw)
	if !ok {
		return nil
	}
	return &s
}

// optionalNumber accepts JSON numbers and numeric strings.
func optionalNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// FormatNumber renders a diagnostics number without exponent or trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Package ingest loads department data: JSON documents, CSV exports from
// the planning spreadsheet, and an embedded fallback for local use.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/TFMV/neongraph/models"
	"github.com/goccy/go-json"
)

// ErrUnsupportedFormat is returned for data formats without a processor.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns the departments they describe
	ProcessData(data []byte) ([]models.Department, error)

	// GetName returns the name of the processor
	GetName() string
}

// document is the on-disk JSON shape.
type document struct {
	Departments []models.Department `json:"departments"`
}

// JSONProcessor handles department JSON documents
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData parses {"departments": [...]}. Departments without an id get
// one derived from their name.
func (p *JSONProcessor) ProcessData(data []byte) ([]models.Department, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	for i := range doc.Departments {
		d := &doc.Departments[i]
		if d.ID == "" {
			d.ID = Slug(d.Name)
		}
	}
	return doc.Departments, nil
}

// CSV column headers of the planning spreadsheet.
const (
	ColumnDepartment = "Schools/Departments"
	ColumnDegrees    = "Degrees offered"
	ColumnInternal   = "Internal Partners/Relationships"
	ColumnExternal   = "External Partners/Relationships"
	ColumnHighlights = "Highlights/Projects"
	ColumnCourses    = "Sampling of Tech Focused courses"
)

// CSVProcessor handles CSV exports of the planning spreadsheet
type CSVProcessor struct{}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData reads one department per row. Rows without a department
// name are skipped.
func (p *CSVProcessor) ProcessData(data []byte) ([]models.Department, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols[ColumnDepartment]; !ok {
		return nil, fmt.Errorf("CSV must have a %q column", ColumnDepartment)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []models.Department
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		name := strings.TrimSpace(field(row, ColumnDepartment))
		if name == "" {
			continue
		}
		out = append(out, models.Department{
			ID:               Slug(name),
			Name:             name,
			Degrees:          ParseDegrees(field(row, ColumnDegrees)),
			InternalPartners: SplitList(field(row, ColumnInternal)),
			ExternalPartners: SplitList(field(row, ColumnExternal)),
			Highlights:       ParseHighlights(field(row, ColumnHighlights)),
			TechCourses:      SplitList(field(row, ColumnCourses)),
		})
	}
	return out, nil
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return NewJSONProcessor(), nil
	case "csv":
		return NewCSVProcessor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ProcessorFor picks a processor from a file extension.
func ProcessorFor(path string) (DataProcessor, error) {
	return GetProcessor(filepath.Ext(path))
}

// Encode writes departments as an indented JSON document.
func Encode(w io.Writer, departments []models.Department) error {
	data, err := json.MarshalIndent(document{Departments: departments}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding departments: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slug derives a department id from its display name.
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "-", "/", "-", "&", "and").Replace(s)
	return slugStrip.ReplaceAllString(s, "")
}

// SplitList splits a cell on newlines, or on semicolons when it has none.
func SplitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	sep := ";"
	if strings.Contains(cell, "\n") {
		sep = "\n"
	}
	var out []string
	for _, item := range strings.Split(cell, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ParseDegrees reads one degree per line. Lines shaped like
// "Theatre BFA: Acting Track" are kept whole so the graph can collapse
// them under their base program.
func ParseDegrees(cell string) models.DegreeList {
	var out models.DegreeList
	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if base, track, ok := strings.Cut(line, ": "); ok && strings.Contains(line, "Track") {
			line = strings.TrimSpace(base) + ": " + strings.TrimSpace(track)
		}
		out = append(out, line)
	}
	return out
}

// ParseHighlights reads "Name: https://..." lines. Lines without a URL
// become title-only highlights.
func ParseHighlights(cell string) []models.Highlight {
	var out []models.Highlight
	for _, line := range strings.Split(cell, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, rest, ok := strings.Cut(line, "https://")
		if !ok {
			out = append(out, models.Highlight{Title: line})
			continue
		}
		name = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(name), ":"))
		if url, _, _ := strings.Cut(rest, "https://"); url != "" {
			rest = url
		}
		out = append(out, models.Highlight{Title: name, URL: "https://" + strings.TrimSpace(rest)})
	}
	return out
}

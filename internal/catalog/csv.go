package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the internship CSV export.
const (
	colCompany        = "Company Name"
	colTitle          = "Internship Title"
	colSector         = "Sector"
	colAreaField      = "Area/Field"
	colSkills         = "Preferred Skill(s)"
	colQualification  = "Minimum Qualification"
	colCourse         = "Course"
	colSpecialization = "Specialization"
	colLocation       = "Location"
	colDistrict       = "District"
	colState          = "State/UT"
	colBenefits       = "Benefits Description"
	colOpportunities  = "No. of Opportunities"
	colApplied        = "Candidates Already Applied"
	colDescription    = "Description"
)

var requiredColumns = []string{colCompany, colTitle}

// LoadError reports an unreadable or malformed catalog source. Callers must
// treat it as fatal: without a catalog no recommendation can be produced.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog from %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadCSV parses the internship CSV file into a catalog. Missing optional
// columns and empty cells become empty strings; a row is never rejected for
// sparse data. Posting IDs are synthesized from the row position.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	c, err := parseCSV(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return c, nil
}

func parseCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	cell := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var postings []*Posting
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(postings)+1, err)
		}

		postings = append(postings, &Posting{
			ID:                fmt.Sprintf("PMIS-2025-%d", len(postings)+1),
			Company:           cell(record, colCompany),
			Title:             cell(record, colTitle),
			Sector:            cell(record, colSector),
			AreaField:         cell(record, colAreaField),
			Skills:            cell(record, colSkills),
			Qualification:     cell(record, colQualification),
			Course:            cell(record, colCourse),
			Specialization:    cell(record, colSpecialization),
			Location:          cell(record, colLocation),
			District:          cell(record, colDistrict),
			State:             cell(record, colState),
			Benefits:          cell(record, colBenefits),
			Opportunities:     parseCount(cell(record, colOpportunities), 1),
			CandidatesApplied: parseCount(cell(record, colApplied), 0),
			Description:       cell(record, colDescription),
		})
	}

	return NewCatalog(postings), nil
}

func parseCount(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

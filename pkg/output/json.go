package output

import (
	"encoding/json"
	"io"

	"github.com/sdejongh/sidediff/pkg/compare"
	"github.com/sdejongh/sidediff/pkg/models"
)

// JSONRenderer renders a result as JSON for automation and scripting
type JSONRenderer struct{}

// JSONResult is the document written by the JSON renderer
type JSONResult struct {
	LeftTitle  string       `json:"left_title,omitempty"`
	RightTitle string       `json:"right_title,omitempty"`
	Equal      bool         `json:"equal"`
	Stats      models.Stats `json:"stats"`
	Rows       []JSONRow    `json:"rows"`
}

// JSONRow is one aligned row; runs are present for diff rows only
type JSONRow struct {
	Class     models.Class `json:"class"`
	LeftLine  int          `json:"left_line,omitempty"`
	Left      *string      `json:"left,omitempty"`
	RightLine int          `json:"right_line,omitempty"`
	Right     *string      `json:"right,omitempty"`
	LeftRuns  []models.Run `json:"left_runs,omitempty"`
	RightRuns []models.Run `json:"right_runs,omitempty"`
}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render writes the result as indented JSON
func (r *JSONRenderer) Render(w io.Writer, result *models.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toJSON(result))
}

// Extension returns the file extension
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Name returns the renderer name
func (r *JSONRenderer) Name() string {
	return "json"
}

func toJSON(result *models.Result) JSONResult {
	doc := JSONResult{
		LeftTitle:  result.LeftTitle,
		RightTitle: result.RightTitle,
		Equal:      result.Equal,
		Stats:      result.Stats,
		Rows:       make([]JSONRow, 0, len(result.Rows)),
	}
	for _, row := range result.Rows {
		jr := JSONRow{Class: row.Class}
		if row.HasLeft() {
			left := row.Left
			jr.LeftLine, jr.Left = row.LeftLine, &left
		}
		if row.HasRight() {
			right := row.Right
			jr.RightLine, jr.Right = row.RightLine, &right
		}
		if row.Chars != nil {
			jr.LeftRuns = compare.Runs(row.Chars.Left)
			jr.RightRuns = compare.Runs(row.Chars.Right)
		}
		doc.Rows = append(doc.Rows, jr)
	}
	return doc
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/fjacquet/backup_client/internal/models"
	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v2"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const maxColWidth = 60

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return &printer{w: w, format: format}, nil
	}
	return nil, fmt.Errorf("invalid output format %q (must be %s, %s or %s)", format, FormatTable, FormatJSON, FormatYAML)
}

// list renders docs as rows of a table, or the raw documents in the
// structured formats.
func (p *printer) list(columns []string, docs []models.Document, row func(models.Document) []interface{}) error {
	if p.format != FormatTable {
		return p.structured(docs)
	}

	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow(toCells(columns)...)
	for _, doc := range docs {
		cells := row(doc)
		for i := range cells {
			cells[i] = cell(cells[i])
		}
		table.AddRow(cells...)
	}
	_, err := fmt.Fprintln(p.w, table)
	return err
}

// show renders one document as a Field/Value table.
func (p *printer) show(columns []string, values []interface{}, doc models.Document) error {
	if p.format != FormatTable {
		return p.structured(doc)
	}

	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.Wrap = true
	table.AddRow("Field", "Value")
	for i, c := range columns {
		var v interface{}
		if i < len(values) {
			v = values[i]
		}
		table.AddRow(c, cell(v))
	}
	_, err := fmt.Fprintln(p.w, table)
	return err
}

// message prints a confirmation line.
func (p *printer) message(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) structured(v interface{}) error {
	switch p.format {
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		_, err = p.w.Write(out)
		return err
	default:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// rawJSON prints a document as JSON, indented unless compact is set.
func (p *printer) rawJSON(doc models.Document, compact bool) error {
	enc := json.NewEncoder(p.w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}

func toCells(columns []string) []interface{} {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	return cells
}

// cell renders a JSON value for a table: nil is blank, integral floats lose
// their decimals and nested values become compact JSON.
func cell(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return int64(t)
		}
		return t
	case map[string]interface{}, []interface{}:
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	}
	return v
}

// field walks nested objects; a missing step yields nil.
func field(doc models.Document, path ...string) interface{} {
	var cur interface{} = doc
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// fieldOr is field with a fallback for missing values.
func fieldOr(doc models.Document, fallback interface{}, path ...string) interface{} {
	if v := field(doc, path...); v != nil {
		return v
	}
	return fallback
}

// count is the length of a JSON array or object, 0 otherwise.
func count(v interface{}) int {
	switch t := v.(type) {
	case []interface{}:
		return len(t)
	case map[string]interface{}:
		return len(t)
	}
	return 0
}

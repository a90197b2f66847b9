package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Tabular values pick their own columns and cell text.
type Tabular interface {
	Table() (headers []string, rows [][]string)
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// WriteTable renders v as a bordered table. Slices of objects become one row per
// element; a single object becomes field/value rows.
func WriteTable(w io.Writer, v any) error {
	if t, ok := v.(Tabular); ok {
		headers, rows := t.Table()
		return renderTable(w, headers, rows)
	}
	x, err := toGeneric(v)
	if err != nil {
		return err
	}
	switch t := x.(type) {
	case []any:
		headers, rows := objectRows(t)
		return renderTable(w, headers, rows)
	case map[string]any:
		keys := sortedKeys(t)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, cell(t[k])})
		}
		return renderTable(w, []string{"field", "value"}, rows)
	default:
		_, err := fmt.Fprintln(w, cell(t))
		return err
	}
}

func objectRows(xs []any) ([]string, [][]string) {
	seen := map[string]bool{}
	var headers []string
	for _, x := range xs {
		m, ok := x.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range sortedKeys(m) {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	if len(headers) == 0 {
		rows := make([][]string, 0, len(xs))
		for _, x := range xs {
			rows = append(rows, []string{cell(x)})
		}
		return []string{"value"}, rows
	}
	rows := make([][]string, 0, len(xs))
	for _, x := range xs {
		m, _ := x.(map[string]any)
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cell(m[h])
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

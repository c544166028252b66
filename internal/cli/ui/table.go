package ui

import (
	"fmt"
	"strconv"
	"strings"

	"elexon/internal/frame"
	"elexon/internal/registry"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const maxCellWidth = 40

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Styles.Muted).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return Styles.Cell
		}).
		Headers(headers...)
}

// RenderDatasets renders the catalogue as a table.
func RenderDatasets(datasets []registry.Dataset) string {
	t := newTable("CODE", "NAME", "CATEGORY", "MAX DAYS", "OUTPUT", "OPERATION")
	for _, ds := range datasets {
		maxDays := "-"
		if ds.MaxDays != nil {
			maxDays = strconv.Itoa(*ds.MaxDays)
		}
		t.Row(ds.Code, truncate(ds.Name), ds.Category, maxDays, string(ds.OutputFormat), ds.Operation)
	}
	return t.Render()
}

// RenderDataset renders the full record of one dataset.
func RenderDataset(ds registry.Dataset) string {
	var b strings.Builder
	field := func(name, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", Styles.Bold.Render(fmt.Sprintf("%-12s", name)), value)
	}
	field("Name", ds.Name)
	field("Code", ds.Code)
	field("Operation", ds.Operation)
	field("Path", ds.Path)
	field("Category", strings.Trim(ds.Category+" / "+ds.Subcategory, " /"))
	field("Required", strings.Join(ds.RequiredCols, ", "))
	field("Optional", strings.Join(ds.OptionalCols, ", "))
	field("Datetime", strings.Join(ds.DatetimeCols, ", "))
	if ds.MaxDays != nil {
		field("Max days", strconv.Itoa(*ds.MaxDays))
	}
	field("Output", string(ds.OutputFormat))
	b.WriteString("\n")
	b.WriteString(ds.Description)
	b.WriteString("\n")
	return b.String()
}

// RenderFrame renders at most limit rows of f, all of them when limit <= 0.
func RenderFrame(f *frame.Frame, limit int) string {
	t := newTable(f.Columns...)
	n := f.RowCount
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		cells := f.Strings(i)
		for j := range cells {
			cells[j] = truncate(cells[j])
		}
		t.Row(cells...)
	}

	out := t.Render()
	if n < f.RowCount {
		out += "\n" + Styles.Muted.Render(fmt.Sprintf("... %d more rows", f.RowCount-n))
	}
	return out
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-1]) + "…"
}

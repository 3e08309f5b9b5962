package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"kvctl.io/kvctl/internal/config"
	"kvctl.io/kvctl/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// table is a static table rendered in the table output format.
type table struct {
	Headers []string
	Rows    [][]string
}

func (t *table) addRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// render pads every column to its widest cell.
func (t *table) render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	writeLine := func(style lipgloss.Style, cells []string) {
		var line strings.Builder
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			// Width includes the right padding.
			line.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	writeLine(headerStyle, t.Headers)
	for _, row := range t.Rows {
		writeLine(cellStyle, row)
	}
	return sb.String()
}

// printer writes command results in the configured output format.
type printer struct {
	w      io.Writer
	format string
}

// print writes value as JSON or YAML, or tbl in table mode.
func (p printer) print(value any, tbl *table) error {
	switch p.format {
	case config.OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case config.OutputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		_, err := io.WriteString(p.w, tbl.render())
		return err
	}
}

// message reports the result of a mutation.
func (p printer) message(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if p.format == config.OutputTable {
		_, err := fmt.Fprintln(p.w, text)
		return err
	}
	return p.print(map[string]string{"message": text}, nil)
}

func namesTable(header string, names []string) *table {
	tbl := &table{Headers: []string{header}}
	for _, name := range names {
		tbl.addRow(name)
	}
	return tbl
}

// cell renders a field of an opaque object; lists are joined with commas.
func cell(o models.Object, key string) string {
	if items, ok := o[key].([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, models.Object{"v": item}.String("v"))
		}
		return strings.Join(parts, ",")
	}
	return o.String(key)
}

// count returns the length of a list field, or 0.
func count(o models.Object, key string) int {
	items, _ := o[key].([]any)
	return len(items)
}

func shardsTable(shards []models.Object) *table {
	tbl := &table{Headers: []string{"INDEX", "NODES", "SLOTS", "MIGRATING"}}
	for i, shard := range shards {
		migrating := cell(shard, "migrating_slot")
		if migrating == "-1" {
			migrating = "-"
		}
		tbl.addRow(fmt.Sprint(i), fmt.Sprint(count(shard, "nodes")), cell(shard, "slot_ranges"), migrating)
	}
	return tbl
}

func nodesTable(nodes []models.Object) *table {
	tbl := &table{Headers: []string{"ID", "ADDR", "ROLE"}}
	for _, node := range nodes {
		tbl.addRow(cell(node, "id"), cell(node, "addr"), cell(node, "role"))
	}
	return tbl
}

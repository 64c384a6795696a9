// ABOUTME: Format-aware rendering of command results as table, CSV, JSON, or YAML
// ABOUTME: Tabular formats use go-pretty column definitions; the rest serialize the value

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"sigs.k8s.io/yaml"
)

type Format string

const (
	TableFormat Format = "table"
	CSVFormat   Format = "csv"
	JSONFormat  Format = "json"
	YAMLFormat  Format = "yaml"
)

var AllFormats = append([]Format{TableFormat, CSVFormat}, NonTabularFormats...)
var NonTabularFormats = []Format{JSONFormat, YAMLFormat}

var noStyle = table.Style{
	Name:   "StyleDefault",
	Box:    table.StyleBoxDefault,
	Color:  table.ColorOptionsDefault,
	Format: table.FormatOptionsDefault,
	HTML:   table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if lo.Contains(AllFormats, f) {
		return f, nil
	}
	names := lo.Map(AllFormats, func(f Format, _ int) string { return string(f) })
	return "", fmt.Errorf("invalid output format %q (expected one of %s)", s, strings.Join(names, ", "))
}

// IsTabular reports whether the format renders columns.
func (f Format) IsTabular() bool {
	return f == TableFormat || f == CSVFormat
}

type Options struct {
	Format     Format // The output format
	Pretty     bool   // Pretty print JSON output
	HideHeader bool   // Hide the column headers
	NoStyle    bool   // Remove all styling from table output
	Title      string // Optional table title
}

type TableColumn[T any] struct {
	table.ColumnConfig
	Value func(T) string
}

// Output renders items as rows, or serializes the slice for non-tabular formats.
func Output[T any](w io.Writer, columns []TableColumn[T], options Options, items []T) error {
	if options.Format.IsTabular() {
		outputTable(w, columns, options, items)
		return nil
	}
	return OutputNonTabular(w, options, items)
}

// OutputOne renders a single item as a one-row table or serializes it.
func OutputOne[T any](w io.Writer, columns []TableColumn[T], options Options, item T) error {
	if options.Format.IsTabular() {
		outputTable(w, columns, options, []T{item})
		return nil
	}
	return OutputNonTabular(w, options, item)
}

// OutputNonTabular serializes v as JSON or YAML.
func OutputNonTabular(w io.Writer, options Options, v interface{}) error {
	switch options.Format {
	case JSONFormat:
		encoder := json.NewEncoder(w)
		if options.Pretty {
			encoder.SetIndent("", "  ")
		}
		return encoder.Encode(v)
	case YAMLFormat:
		b, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("invalid format %q", options.Format)
	}
}

// KeyValue prints key-value pairs with the keys aligned. Empty values are skipped.
// Example:
//
//	KeyValue(w, []lo.Entry[string, any]{
//	  {Key: "VM size", Value: 48},
//	  {Key: "VMs", Value: 3},
//	})
//
// Output:
//
//	VM size = 48
//	VMs     = 3
func KeyValue(w io.Writer, data []lo.Entry[string, any]) {
	maxKeyLength := 0
	for _, pair := range data {
		if len(pair.Key) > maxKeyLength {
			maxKeyLength = len(pair.Key)
		}
	}

	for _, pair := range data {
		if fmt.Sprintf("%v", pair.Value) == "" {
			continue
		}
		fmt.Fprintf(w, "%-*s = %v\n", maxKeyLength, pair.Key, pair.Value)
	}
}

func outputTable[T any](w io.Writer, columns []TableColumn[T], options Options, items []T) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	configs := lo.Map(columns, func(c TableColumn[T], i int) table.ColumnConfig {
		config := c.ColumnConfig
		config.Number = i + 1
		return config
	})
	tw.SetColumnConfigs(configs)

	if !options.HideHeader {
		headers := lo.Map(columns, func(c TableColumn[T], _ int) interface{} { return c.Name })
		tw.AppendHeader(headers)
	}
	if options.Title != "" && options.Format == TableFormat {
		tw.SetTitle(options.Title)
	}

	tw.SetStyle(table.StyleLight)
	if options.NoStyle {
		tw.SetStyle(noStyle)
	}

	for _, item := range items {
		values := lo.Map(columns, func(c TableColumn[T], _ int) interface{} {
			return c.Value(item)
		})
		tw.AppendRow(values)
	}

	switch options.Format {
	case TableFormat:
		tw.Render()
	case CSVFormat:
		tw.RenderCSV()
	}
}

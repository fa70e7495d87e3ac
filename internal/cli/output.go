package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"cxkit/internal/sample"
	cxstrings "cxkit/pkg/strings"
)

// OutputFormat selects how a Printer renders data.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatWide  OutputFormat = "wide"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ValidateOutputFormat rejects formats the Printer cannot render.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatWide, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", format)
	}
}

// Printer writes command output in the selected format.
type Printer struct {
	Out       io.Writer
	Format    OutputFormat
	NoHeaders bool
}

type resultItem struct {
	TestCase      string   `json:"testCase" yaml:"testCase"`
	ExpectFailure bool     `json:"expectFailure" yaml:"expectFailure"`
	Passed        bool     `json:"passed" yaml:"passed"`
	AsExpected    bool     `json:"asExpected" yaml:"asExpected"`
	Differences   []string `json:"differences,omitempty" yaml:"differences,omitempty"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

type resourceItem struct {
	Kind        string `json:"kind" yaml:"kind"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Status      string `json:"status" yaml:"status"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
}

type turnItem struct {
	Input     string   `json:"input" yaml:"input"`
	Responses []string `json:"responses" yaml:"responses"`
	Page      string   `json:"page,omitempty" yaml:"page,omitempty"`
	Intent    string   `json:"intent,omitempty" yaml:"intent,omitempty"`
}

// Results prints one row per test case followed by a summary line.
func (p *Printer) Results(results []sample.Result) error {
	items := make([]resultItem, 0, len(results))
	for _, r := range results {
		item := resultItem{
			TestCase:      r.DisplayName,
			ExpectFailure: r.ExpectFailure,
			Passed:        r.Passed,
			AsExpected:    r.AsExpected(),
		}
		for _, d := range r.Differences {
			item.Differences = append(item.Differences, fmt.Sprintf("%s: %s", d.GetType(), d.GetDescription()))
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		items = append(items, item)
	}
	if p.structured() {
		return p.encode(items)
	}

	headers := table.Row{"Test Case", "Expected", "Result", "Differences"}
	if p.wide() {
		headers = append(headers, "Error")
	}
	tw := NewPlainTable(p.Out, headers, p.NoHeaders)
	mismatched := 0
	for _, item := range items {
		if !item.AsExpected {
			mismatched++
		}
		row := table.Row{item.TestCase, outcome(!item.ExpectFailure), outcome(item.Passed), p.cell(strings.Join(item.Differences, "; "))}
		if p.wide() {
			row = append(row, dash(item.Error))
		}
		tw.AppendRow(row)
	}
	tw.Render()

	if !p.NoHeaders {
		summary := fmt.Sprintf("%d test case(s), %d as expected", len(items), len(items)-mismatched)
		if mismatched > 0 {
			fmt.Fprintln(p.Out, text.FgRed.Sprint(summary))
		} else {
			fmt.Fprintln(p.Out, text.FgGreen.Sprint(summary))
		}
	}
	return nil
}

// Resources prints the resources a sample resolved.
func (p *Printer) Resources(resources []sample.Resource) error {
	items := make([]resourceItem, 0, len(resources))
	for _, r := range resources {
		items = append(items, resourceItem(r))
	}
	if p.structured() {
		return p.encode(items)
	}

	headers := table.Row{"Kind", "Display Name", "Status"}
	if p.wide() {
		headers = append(headers, "Name")
	}
	tw := NewPlainTable(p.Out, headers, p.NoHeaders)
	for _, item := range items {
		row := table.Row{item.Kind, item.DisplayName, item.Status}
		if p.wide() {
			row = append(row, dash(item.Name))
		}
		tw.AppendRow(row)
	}
	tw.Render()
	return nil
}

// Turns prints a conversation, one row per user input.
func (p *Printer) Turns(turns []sample.Turn) error {
	items := make([]turnItem, 0, len(turns))
	for _, t := range turns {
		items = append(items, turnItem(t))
	}
	if p.structured() {
		return p.encode(items)
	}

	headers := table.Row{"Input", "Responses"}
	if p.wide() {
		headers = append(headers, "Page", "Intent")
	}
	tw := NewPlainTable(p.Out, headers, p.NoHeaders)
	for _, item := range items {
		row := table.Row{item.Input, p.cell(strings.Join(item.Responses, " | "))}
		if p.wide() {
			row = append(row, dash(item.Page), dash(item.Intent))
		}
		tw.AppendRow(row)
	}
	tw.Render()
	return nil
}

// LiveCheckResult is the outcome of calling a deployed webhook.
type LiveCheckResult struct {
	Function string `json:"function" yaml:"function"`
	Want     string `json:"want" yaml:"want"`
	Got      string `json:"got" yaml:"got"`
	Passed   bool   `json:"passed" yaml:"passed"`
}

// LiveCheck prints the outcome of a deployed webhook check.
func (p *Printer) LiveCheck(r LiveCheckResult) error {
	if p.structured() {
		return p.encode(r)
	}

	headers := table.Row{"Function", "Result", "Reply"}
	if p.wide() {
		headers = append(headers, "Expected")
	}
	tw := NewPlainTable(p.Out, headers, p.NoHeaders)
	row := table.Row{r.Function, outcome(r.Passed), p.cell(r.Got)}
	if p.wide() {
		row = append(row, r.Want)
	}
	tw.AppendRow(row)
	tw.Render()
	return nil
}

func (p *Printer) structured() bool {
	return p.Format == OutputFormatJSON || p.Format == OutputFormatYAML
}

func (p *Printer) wide() bool {
	return p.Format == OutputFormatWide
}

// cell renders free text. Only the wide format shows it in full.
func (p *Printer) cell(s string) string {
	if !p.wide() {
		s = cxstrings.Cell(s, cxstrings.DefaultCellWidth)
	}
	return dash(s)
}

func (p *Printer) encode(data any) error {
	if p.Format == OutputFormatJSON {
		return outputJSON(p.Out, data)
	}
	return outputYAML(p.Out, data)
}

func outputJSON(w io.Writer, data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func outputYAML(w io.Writer, data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func outcome(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

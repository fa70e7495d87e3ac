package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cxkit/internal/sample"
)

func testResults() []sample.Result {
	return []sample.Result{
		{DisplayName: "Test Case 0", Passed: true},
		{
			DisplayName:   "Test Case XFAIL",
			ExpectFailure: true,
			Differences: []*cxpb.TestRunDifference{
				{Type: cxpb.TestRunDifference_UTTERANCE, Description: "Utterance mismatch"},
			},
			Err: errors.New("test case \"Test Case XFAIL\" failed"),
		},
	}
}

func TestValidateOutputFormat(t *testing.T) {
	for _, format := range []string{"table", "wide", "json", "yaml"} {
		assert.NoError(t, ValidateOutputFormat(format), format)
	}
	err := ValidateOutputFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
	assert.Error(t, ValidateOutputFormat(""))
}

func TestPrinter_ResultsTable(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatTable}

	require.NoError(t, p.Results(testResults()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"TEST", "CASE", "EXPECTED", "RESULT", "DIFFERENCES"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Test", "Case", "0", "PASS", "PASS", "-"}, strings.Fields(lines[1]))
	assert.Contains(t, lines[2], "UTTERANCE: Utterance mismatch")
	assert.Equal(t, []string{"Test", "Case", "XFAIL", "FAIL", "FAIL"}, strings.Fields(lines[2])[:5])
	assert.Contains(t, lines[3], "2 test case(s), 2 as expected")
	assert.NotContains(t, buf.String(), "│", "no box drawing")
}

func TestPrinter_ResultsWideShowsError(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatWide}

	require.NoError(t, p.Results(testResults()))

	assert.Contains(t, buf.String(), "ERROR")
	assert.Contains(t, buf.String(), `test case "Test Case XFAIL" failed`)
}

func TestPrinter_ResultsMismatchSummary(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatTable}

	require.NoError(t, p.Results([]sample.Result{{DisplayName: "Test Case 0", Passed: false}}))

	assert.Contains(t, buf.String(), "1 test case(s), 0 as expected")
}

func TestPrinter_ResultsNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatTable, NoHeaders: true}

	require.NoError(t, p.Results(testResults()))

	assert.NotContains(t, buf.String(), "EXPECTED")
	assert.NotContains(t, buf.String(), "as expected")
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}

func TestPrinter_ResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatJSON}

	require.NoError(t, p.Results(testResults()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Test Case 0", got[0]["testCase"])
	assert.Equal(t, true, got[0]["asExpected"])
	assert.NotContains(t, got[0], "error")
	assert.Equal(t, []any{"UTTERANCE: Utterance mismatch"}, got[1]["differences"])
	assert.Equal(t, true, got[1]["expectFailure"])
}

func TestPrinter_ResourcesYAML(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Out: &buf, Format: OutputFormatYAML}

	resources := []sample.Resource{{Kind: "agent", DisplayName: "My Agent", Status: "created", Name: "projects/p/locations/global/agents/1"}}
	require.NoError(t, p.Resources(resources))

	var got []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []map[string]string{{
		"kind":        "agent",
		"displayName": "My Agent",
		"status":      "created",
		"name":        "projects/p/locations/global/agents/1",
	}}, got)
}

func TestPrinter_ResourcesTable(t *testing.T) {
	resources := []sample.Resource{
		{Kind: "agent", DisplayName: "Agent", Status: "found", Name: "projects/p/locations/global/agents/1"},
		{Kind: "page", DisplayName: "Main", Status: "not found"},
	}

	var narrow bytes.Buffer
	require.NoError(t, (&Printer{Out: &narrow, Format: OutputFormatTable}).Resources(resources))
	assert.NotContains(t, narrow.String(), "projects/p")

	var wide bytes.Buffer
	require.NoError(t, (&Printer{Out: &wide, Format: OutputFormatWide}).Resources(resources))
	lines := strings.Split(strings.TrimSpace(wide.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"agent", "Agent", "found", "projects/p/locations/global/agents/1"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"page", "Main", "not", "found", "-"}, strings.Fields(lines[2]))
}

func TestPrinter_Turns(t *testing.T) {
	turns := []sample.Turn{{
		Input:     "trigger intent",
		Responses: []string{"Entering Main Page", "Webhook received: trigger intent (Tag: enter_main_page)"},
		Page:      "Main Page",
		Intent:    "go-to-example-page",
	}}

	var buf bytes.Buffer
	require.NoError(t, (&Printer{Out: &buf, Format: OutputFormatWide}).Turns(turns))

	out := buf.String()
	assert.Contains(t, out, "Entering Main Page | Webhook received")
	assert.Contains(t, out, "go-to-example-page")
	assert.Contains(t, out, "INTENT")
}

func TestPrinter_LiveCheck(t *testing.T) {
	r := LiveCheckResult{
		Function: "projects/p/locations/us-central1/functions/webhook",
		Want:     "Webhook received: example_text (Tag: example_tag)",
		Got:      "hello",
	}

	var table bytes.Buffer
	require.NoError(t, (&Printer{Out: &table, Format: OutputFormatWide}).LiveCheck(r))
	assert.Contains(t, table.String(), "FAIL")
	assert.Contains(t, table.String(), "EXPECTED")
	assert.Contains(t, table.String(), r.Want)

	var js bytes.Buffer
	require.NoError(t, (&Printer{Out: &js, Format: OutputFormatJSON}).LiveCheck(r))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["got"])
	assert.Equal(t, false, decoded["passed"])
}

func TestPrinter_NarrowTableCutsLongCells(t *testing.T) {
	long := strings.Repeat("response ", 20)
	turns := []sample.Turn{{Input: "hi", Responses: []string{long}}}

	var narrow bytes.Buffer
	require.NoError(t, (&Printer{Out: &narrow, Format: OutputFormatTable}).Turns(turns))
	assert.Contains(t, narrow.String(), "...")
	assert.NotContains(t, narrow.String(), strings.TrimSpace(long))

	var wide bytes.Buffer
	require.NoError(t, (&Printer{Out: &wide, Format: OutputFormatWide}).Turns(turns))
	assert.Contains(t, wide.String(), strings.TrimSpace(long))
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
)

const walletsCSV = "wallet,pnl,label\n" +
	"a,2,bot\n" +
	"b,4,human\n" +
	"c,4,bot\n" +
	"d,4,human\n" +
	"e,5,human\n" +
	"f,5,bot\n" +
	"g,7,human\n" +
	"h,9,Bot farm\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFilters(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml document", "filters.yaml", `
filters:
  - column_key: pnl
    column_label: PnL
    data_type: currency
    operator: {type: numeric, operator: range}
    value: [9, 4]
`},
		{"yaml list without operator type", "filters.yml", `
- column_key: pnl
  column_label: PnL
  data_type: numeric
  operator: {operator: range}
  value: [4, 9]
`},
		{"json list", "filters.json", `[{"column_key":"pnl","column_label":"PnL","data_type":"numeric","operator":{"type":"numeric","operator":"range"},"value":[4,9]}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters, err := readFilters(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			require.Len(t, filters, 1)
			assert.True(t, filters[0].Value.IsPair())
			assert.Equal(t, "PnL between 4 and 9", filters[0].Description)
		})
	}
}

func TestReadFiltersRejectsInvalid(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
- column_key: label
  data_type: text
  operator: {type: text, operator: greaterThan}
  value: 3
`)
	_, err := readFilters(path)
	assert.Error(t, err)

	_, err = readFilters(writeFile(t, "broken.yaml", "filters: [\n"))
	assert.Error(t, err)
}

func TestReadChains(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"single chain", `
result_name: score
steps:
  - {column_key: pnl, method_id: bellCurve}
  - {column_key: pnl, method_id: zScore}
operators: ["+"]
`, 1},
		{"document", `
analysis_chains:
  - steps: [{column_key: pnl, method_id: bellCurve}]
  - result_name: pct
    steps: [{column_key: pnl, method_id: percentile}]
`, 2},
		{"list", `[{"steps":[{"column_key":"pnl","method_id":"zScore"}]}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains, err := readChains(writeFile(t, "chains.yaml", tt.content))
			require.NoError(t, err)
			assert.Len(t, chains, tt.want)
		})
	}

	chains, err := readChains(writeFile(t, "c.yaml", "steps: [{column_key: pnl, method_id: bellCurve}]\n"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultResultName, chains[0].ResultName)

	_, err = readChains(writeFile(t, "c.yaml", "steps:\n  - {column_key: pnl, method_id: bellCurve}\n  - {column_key: pnl, method_id: zScore}\n"))
	assert.Error(t, err)

	_, err = readChains(writeFile(t, "c.yaml", "analysis_chains: []\n"))
	assert.Error(t, err)
}

func TestWriteRowsCSVAndWorkbook(t *testing.T) {
	headers := []string{"wallet", "score"}
	rows := []dataset.Row{{"wallet": "a", "score": "1.5"}, {"wallet": "b", "score": ""}}

	var stdout bytes.Buffer
	require.NoError(t, writeRows(&stdout, "", headers, rows))
	assert.Equal(t, "wallet,score\na,1.5\nb,\n", stdout.String())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeRows(&stdout, path, headers, rows))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	read, err := workbooks.ReadRows(content)
	require.NoError(t, err)
	require.Len(t, read, 3)
	assert.Equal(t, []string{"wallet", "score"}, read[0])
	assert.Equal(t, "a", read[1][0])
}

func TestAnalyzeCommand(t *testing.T) {
	data := writeFile(t, "wallets.csv", walletsCSV)
	chains := writeFile(t, "chain.yaml", "result_name: distance\nsteps: [{column_key: pnl, method_id: bellCurve}]\n")
	filters := writeFile(t, "filters.yaml", `
- column_key: distance
  data_type: numeric
  operator: {operator: greaterThan}
  value: 1
`)

	cmd := newAnalyzeCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{data, "-c", chains, "-f", filters})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "wallet,pnl,label,distance", lines[0])
	assert.Equal(t, "a,2,bot,1.5", lines[1])
	assert.Equal(t, "h,9,Bot farm,2", lines[2])
	assert.Contains(t, errOut.String(), "over 2 of 8 rows")
}

func TestInspectAndMetadataCommands(t *testing.T) {
	data := writeFile(t, "wallets.csv", walletsCSV)

	inspect := newInspectCmd()
	var out bytes.Buffer
	inspect.SetOut(&out)
	inspect.SetArgs([]string{data})
	require.NoError(t, inspect.Execute())
	assert.Contains(t, out.String(), "wallets.csv: 8 rows, 3 columns")
	assert.Contains(t, out.String(), "pnl")

	dict := writeFile(t, "dict.json", `[{"metric":"pnl","what_it_is":"Profit","data_type":"currency"},{"metric":"gas"}]`)
	summary := writeFile(t, "summary.csv", "stat,pnl\nmean,5\nmedian,4.5\n")

	metadata := newMetadataCmd()
	out.Reset()
	metadata.SetOut(&out)
	metadata.SetArgs([]string{data, dict, summary})
	require.NoError(t, metadata.Execute())
	assert.Contains(t, out.String(), `"metric": "pnl"`)
	assert.Contains(t, out.String(), `"average": 5`)
	assert.NotContains(t, out.String(), `"gas"`)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "walletlab.yaml")

	cmd := newConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init", path})
	require.NoError(t, cmd.Execute())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "cookie_name: walletlab_session")

	cmd = newConfigCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"init", path})
	assert.Error(t, cmd.Execute())
}

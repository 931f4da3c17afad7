package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/internal/errors"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{"empty input", "", [][]string{}},
		{"single row with newline", "a,b\n", [][]string{{"a", "b"}}},
		{"final row without newline", "a,b\n1,2", [][]string{{"a", "b"}, {"1", "2"}}},
		{"carriage returns dropped", "a,b\r\n1,2\r\n", [][]string{{"a", "b"}, {"1", "2"}}},
		{"quoted separator", "name,note\nw1,\"hello, world\"\n", [][]string{{"name", "note"}, {"w1", "hello, world"}}},
		{"escaped quote", "a\n\"say \"\"hi\"\"\"\n", [][]string{{"a"}, {`say "hi"`}}},
		{"newline inside quotes", "a,b\n\"line1\nline2\",x\n", [][]string{{"a", "b"}, {"line1\nline2", "x"}}},
		{"blank rows dropped anywhere", "a,b\n , \n1,2\n,\n3,4\n\n", [][]string{{"a", "b"}, {"1", "2"}, {"3", "4"}}},
		{"ragged rows kept", "a,b,c\n1\n", [][]string{{"a", "b", "c"}, {"1"}}},
		{"bare quote inside a cell is literal", "label,size\nmonitor,27\" wide\n", [][]string{{"label", "size"}, {"monitor", `27" wide`}}},
		{"text after a closing quote", "label\n\"ab\"c\n", [][]string{{"label"}, {"abc"}}},
		{"quote after the quoted section is literal", "label\n\"ab\"c\"d\n", [][]string{{"label"}, {`abc"d`}}},
		{"quoted cell after leading blank", "a, \"x,y\"\n", [][]string{{"a", " x,y"}}},
		{"empty quoted cell at end of input", "a,\"\"", [][]string{{"a", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseCSV(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}

func TestParseCSVUnterminatedQuote(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"open quote at end of input", "a,b\n\"open,1\n", "unterminated quote starting on line 2"},
		{"open quote spanning lines", "a\n1\n\"x\ny\nz", "unterminated quote starting on line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(tt.input)
			require.Error(t, err)
			assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestParseCSVClosedQuoteIsNotMalformed(t *testing.T) {
	rows, err := ParseCSV("label\n\"ab\"c\n\"closed\"\n")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"label"}, {"abc"}, {"closed"}}, rows)
}

func TestFormatCSVRoundTrip(t *testing.T) {
	rows := [][]string{
		{"wallet", "note", "pnl"},
		{"0xabc", "likes \"degen\" plays", "1,234.56"},
		{"0xdef", "two\nlines", "-5"},
		{"0x123", "", "7"},
	}

	text, err := FormatCSV(rows)
	require.NoError(t, err)

	parsed, err := ParseCSV(text)
	require.NoError(t, err)
	assert.Equal(t, rows, parsed)
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainDataset "walletlab/domain/dataset"
	"walletlab/internal/errors"
)

type MockSpreadsheetReader struct {
	mock.Mock
}

func (m *MockSpreadsheetReader) ReadRows(content []byte) ([][]string, error) {
	args := m.Called(content)
	if rows := args.Get(0); rows != nil {
		return rows.([][]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset("wallet, pnl ,vol\nw1,10\nw2,20,3,extra\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"wallet", " pnl ", "vol"}, ds.Headers)
	assert.Equal(t, []string{"wallet", "pnl", "vol"}, ds.Columns())
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, domainDataset.Row{"wallet": "w1", " pnl ": "10", "vol": ""}, ds.Rows[0])
	assert.Equal(t, domainDataset.Row{"wallet": "w2", " pnl ": "20", "vol": "3"}, ds.Rows[1])

	v, ok := Value(ds.Rows[1], "pnl")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
}

func TestParseDatasetEmpty(t *testing.T) {
	_, err := ParseDataset("\n\n")
	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
}

func TestParseDatasetHeaders(t *testing.T) {
	headers, err := ParseDatasetHeaders(" wallet ,, pnl\n1,2,3\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"wallet", "pnl"}, headers)

	headers, err = ParseDatasetHeaders("")
	require.NoError(t, err)
	assert.Empty(t, headers)
}

func TestLoadFileDispatch(t *testing.T) {
	reader := new(MockSpreadsheetReader)
	content := []byte("binary workbook")
	reader.On("ReadRows", content).Return([][]string{{"wallet", "pnl"}, {"w1", "5"}}, nil)

	loader := NewLoader(reader)

	loaded, err := loader.LoadFile(domainDataset.SlotDataset, "wallets.XLSX", content)
	require.NoError(t, err)
	assert.Equal(t, "wallets.XLSX", loaded.Dataset.Filename)
	assert.Equal(t, 1, loaded.Dataset.RowCount())
	reader.AssertExpectations(t)

	loaded, err = loader.LoadFile(domainDataset.SlotDictionary, "dict.json", []byte(`[{"metric":"pnl"}]`))
	require.NoError(t, err)
	assert.Len(t, loaded.Dictionary, 1)

	loaded, err = loader.LoadFile(domainDataset.SlotSummary, "summary.csv", []byte("stat,pnl\nmean,4\n"))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, *loaded.Summary["pnl"].Mean, 1e-9)
}

func TestLoadFileRejectsUnsupportedFormats(t *testing.T) {
	tests := []struct {
		name     string
		slot     domainDataset.Slot
		filename string
	}{
		{"parquet dataset", domainDataset.SlotDataset, "wallets.parquet"},
		{"text dataset", domainDataset.SlotDataset, "wallets.txt"},
		{"xlsx dictionary", domainDataset.SlotDictionary, "dict.xlsx"},
		{"json summary", domainDataset.SlotSummary, "summary.json"},
		{"no extension", domainDataset.SlotSummary, "summary"},
	}

	loader := NewLoader(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadFile(tt.slot, tt.filename, []byte("a,b\n1,2\n"))
			require.Error(t, err)
			assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
		})
	}

	_, err := loader.LoadFile(domainDataset.SlotDataset, "wallets.xlsx", []byte("x"))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestLoadFileMalformed(t *testing.T) {
	_, err := NewLoader(nil).LoadFile(domainDataset.SlotDataset, "wallets.csv", []byte("wallet,note\nw1,\"open\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Equal(t, []string{".csv"}, NewLoader(nil).SupportedExtensions(domainDataset.SlotDataset))
	assert.Equal(t, []string{".csv", ".xlsx"}, NewLoader(new(MockSpreadsheetReader)).SupportedExtensions(domainDataset.SlotDataset))
	assert.Equal(t, []string{".csv", ".json"}, NewLoader(nil).SupportedExtensions(domainDataset.SlotDictionary))
}

func TestValueTrimmedHeaderFallback(t *testing.T) {
	ds, err := ParseDataset("wallet,pnl ,\" pnl\"\n0xa,1,2\n")
	require.NoError(t, err)
	row := ds.Rows[0]

	tests := []struct {
		name   string
		column string
		want   string
		found  bool
	}{
		{"exact key", "pnl ", "1", true},
		{"trimmed key picks smallest raw header", "pnl", "2", true},
		{"padded lookup", " wallet ", "0xa", true},
		{"missing column", "gas", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				got, ok := Value(row, tt.column)
				assert.Equal(t, tt.found, ok)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainDataset "walletlab/domain/dataset"
	"walletlab/internal/errors"
)

func TestParseDictionaryCSV(t *testing.T) {
	text := "Metric, What_It_Is ,DATA_TYPE,higher_is,units_or_range\n" +
		"pnl,Realized profit,Currency,BETTER,USD\n" +
		" ,no metric,numeric,better,\n" +
		"label,Wallet label,text,sideways,\n" +
		"pnl,duplicate,text,worse,\n" +
		"vol,Volume,mystery,,\n"

	records, err := ParseDictionaryCSV(text)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, domainDataset.DictionaryRecord{
		Metric: "pnl", WhatItIs: "Realized profit", DataType: domainDataset.DataTypeCurrency,
		HigherIs: domainDataset.HigherIsBetter, UnitsOrRange: "USD",
	}, records[0])
	assert.Equal(t, domainDataset.DataTypeText, records[1].DataType)
	assert.Equal(t, domainDataset.HigherIsDepends, records[1].HigherIs)
	assert.Equal(t, domainDataset.DataTypeNumeric, records[2].DataType)
	assert.Equal(t, domainDataset.HigherIsDepends, records[2].HigherIs)
}

func TestParseDictionaryJSON(t *testing.T) {
	text := `[
		{"metric": "pnl", "what_it_is": "Profit", "data_type": "currency", "higher_is": "better"},
		{"metric": "", "what_it_is": "blank"},
		{"what_it_is": "missing metric"},
		{"metric": 42, "data_type": "RATIO", "units_or_range": 100}
	]`

	records, err := ParseDictionaryJSON(text)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "pnl", records[0].Metric)
	assert.Equal(t, "42", records[1].Metric)
	assert.Equal(t, domainDataset.DataTypeRatio, records[1].DataType)
	assert.Equal(t, "100", records[1].UnitsOrRange)
}

func TestParseDictionaryMalformed(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"json object", func() error { _, err := ParseDictionaryJSON(`{"metric":"pnl"}`); return err }},
		{"json invalid", func() error { _, err := ParseDictionaryJSON(`[{`); return err }},
		{"json no metrics", func() error { _, err := ParseDictionaryJSON(`[{"what_it_is":"x"}]`); return err }},
		{"csv empty", func() error { _, err := ParseDictionaryCSV(""); return err }},
		{"csv header only", func() error { _, err := ParseDictionaryCSV("metric,what_it_is\n"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.Equal(t, errors.CodeMalformedInput, errors.GetCode(err))
		})
	}
}

package preset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("Analysis_Chain")
	require.NoError(t, err)
	assert.Equal(t, KindAnalysisChain, kind)

	_, err = ParseKind("workspace")
	assert.Error(t, err)
}

func TestNewPresetValidatesPayload(t *testing.T) {
	author := Author{ID: "u1", Name: "Ana"}

	filter, err := pipeline.NewFilterDefinition("pnl", "PnL", dataset.DataTypeNumeric, pipeline.OpGreaterThan, pipeline.NumberValue(0))
	require.NoError(t, err)
	payload, err := json.Marshal(filter)
	require.NoError(t, err)

	p, err := NewPreset(KindFilter, " winners ", "", payload, author)
	require.NoError(t, err)
	assert.Equal(t, "winners", p.Name)
	assert.False(t, p.ID == "")

	_, err = NewPreset(KindFilterChain, "empty", "", json.RawMessage(`[]`), author)
	assert.Error(t, err)

	_, err = NewPreset(KindAnalysisChain, "bad", "", json.RawMessage(`{"steps":[{"column_key":"a","method_id":"bellCurve"},{"column_key":"b","method_id":"bellCurve"}],"operators":[]}`), author)
	assert.Error(t, err)

	_, err = NewPreset(KindAnalysis, "", "", json.RawMessage(`{}`), author)
	assert.Error(t, err)
}

func TestWorkspacePresetValidate(t *testing.T) {
	w := WorkspacePreset{
		Version: WorkspaceVersion,
		Files: map[dataset.Slot]WorkspaceFile{
			dataset.SlotDataset: {Filename: "wallets.csv", Content: "wallet,pnl\nw1,5\n"},
		},
	}
	assert.NoError(t, w.Validate())

	w.Version = 99
	assert.Error(t, w.Validate())

	w.Version = WorkspaceVersion
	w.Files["notes"] = WorkspaceFile{Filename: "x.txt"}
	assert.Error(t, w.Validate())
}

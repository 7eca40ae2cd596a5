package fileio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/reconcile"
)

func TestDecodeLeadsPayload_BareArray(t *testing.T) {
	records, err := DecodeLeadsPayload([]byte(`[{"name":"Ana"},{"name":"Bruno"}]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ana", records[0]["name"])
}

func TestDecodeLeadsPayload_WrappedObject(t *testing.T) {
	records, err := DecodeLeadsPayload([]byte(`{"leads":[{"name":"Ana"}]}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["name"])
}

func TestDecodeLeadsPayload_NonObjectElementsKeptAsNil(t *testing.T) {
	records, err := DecodeLeadsPayload([]byte(`[{"name":"Ana"}, "texto solto", 42]`))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Nil(t, records[1])
	assert.Nil(t, records[2])

	// The normalizer skips the nil records without aborting the batch.
	leads := reconcile.NormalizeRecords(records)
	assert.Len(t, leads, 1)
}

func TestDecodeLeadsPayload_RejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "invalid json", payload: `{"leads":`},
		{name: "scalar", payload: `42`},
		{name: "object without leads", payload: `{"items":[]}`},
		{name: "leads not an array", payload: `{"leads":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLeadsPayload([]byte(tt.payload))
			require.Error(t, err)
		})
	}
}

func TestEncodeLeadsPayload(t *testing.T) {
	leads := []model.Lead{{ID: "1", Name: "Ana", Stage: model.StageNew}}

	data, err := EncodeLeadsPayload(leads, "2024-03-15T00:00:00Z")
	require.NoError(t, err)

	var payload ExportPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "crm-leads", payload.Schema)
	assert.Equal(t, 1, payload.Version)
	assert.Equal(t, "2024-03-15T00:00:00Z", payload.ExportedAt)
	require.Len(t, payload.Leads, 1)
	assert.Equal(t, "Ana", payload.Leads[0].Name)
}

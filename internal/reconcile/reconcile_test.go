package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovcrm/crm-cli/internal/model"
)

func TestReconcile_AddsNewLead(t *testing.T) {
	incoming := NormalizeRecords([]RawRecord{
		{"name": "Carlos Pereira", "phone": "(11) 91111-2222", "stage": "em negociação"},
	})
	require.Len(t, incoming, 1)

	res := Reconcile(nil, incoming)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Updated)
	require.Len(t, res.Merged, 1)
	assert.Equal(t, "Carlos Pereira", res.Merged[0].Name)
	assert.Equal(t, model.StageNegotiation, res.Merged[0].Stage)
	assert.NotEmpty(t, res.Merged[0].ID)
	assert.Nil(t, res.Merged[0].ImportMeta)
}

func TestReconcile_MergesByPhoneSuffix(t *testing.T) {
	existing := []model.Lead{
		{ID: "1", Name: "José Silva", Phone: "+5511999998888", Stage: model.StageQualification, Owner: "ana"},
		{ID: "2", Name: "Outra Pessoa", Phone: "11911112222", Stage: model.StageNew},
	}
	incoming := []model.Lead{
		{
			Name:       "Jose da Silva",
			Phone:      "11999998888",
			NextStep:   "Ligar",
			Owner:      "ana",
			ImportMeta: &model.ImportMeta{Provided: map[string]bool{"phone": true, "nextStep": true}},
		},
	}

	res := Reconcile(existing, incoming)

	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Merged, 2)
	merged := res.Merged[0]
	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "José Silva", merged.Name, "name was not provided, existing wins")
	assert.Equal(t, "Ligar", merged.NextStep)
}

func TestReconcile_AmbiguousNameAddsInstead(t *testing.T) {
	existing := []model.Lead{
		{ID: "1", Name: "Maria", Stage: model.StageNew},
		{ID: "2", Name: "Maria", Stage: model.StageNew},
	}
	incoming := []model.Lead{{Name: "maria", Stage: model.StageNew}}

	res := Reconcile(existing, incoming)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Updated)
	assert.Len(t, res.Merged, 3)
}

func TestReconcile_EarlierMergesVisibleToLaterRows(t *testing.T) {
	incoming := NormalizeRecords([]RawRecord{
		{"name": "Ana", "phone": "11999998888"},
		{"name": "Ana", "phone": "11999998888", "obs": "segunda linha"},
	})
	require.Len(t, incoming, 2)

	res := Reconcile(nil, incoming)

	// The second row merges into the lead the first row just added.
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Updated)
	assert.Len(t, res.Merged, 1)
}

func TestReconcile_Idempotent(t *testing.T) {
	batch := NormalizeRecords([]RawRecord{
		{"id": float64(1), "name": "Ana", "phone": "11999998888", "value": "R$ 1.000,00", "stage": "Fechado"},
		{"id": float64(2), "name": "Bruno", "phone": "11911112222", "stage": "novo"},
	})
	require.Len(t, batch, 2)

	first := Reconcile(nil, batch)
	assert.Equal(t, 2, first.Added)

	second := Reconcile(first.Merged, batch)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Updated)
	require.Len(t, second.Merged, 2)
	for i := range second.Merged {
		assert.Equal(t, first.Merged[i].ID, second.Merged[i].ID)
		assert.Equal(t, first.Merged[i].Name, second.Merged[i].Name)
		assert.Equal(t, first.Merged[i].Phone, second.Merged[i].Phone)
		assert.Equal(t, first.Merged[i].Stage, second.Merged[i].Stage)
		assert.InDelta(t, first.Merged[i].Value, second.Merged[i].Value, 1e-9)
	}
}

func TestReconcile_DoesNotMutateExisting(t *testing.T) {
	existing := []model.Lead{{ID: "1", Name: "Ana", Stage: model.StageNew}}
	incoming := []model.Lead{{ID: "1", Name: "Ana Paula", Stage: model.StageClosed}}

	_ = Reconcile(existing, incoming)

	assert.Equal(t, "Ana", existing[0].Name)
	assert.Equal(t, model.StageNew, existing[0].Stage)
}

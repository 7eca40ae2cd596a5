package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sovcrm/crm-cli/internal/model"
)

func metaWith(fields ...string) *model.ImportMeta {
	meta := &model.ImportMeta{Provided: make(map[string]bool, len(fields))}
	for _, f := range fields {
		meta.Mark(f)
	}
	return meta
}

func TestMergeMatched_ProvenanceGatesFields(t *testing.T) {
	existing := model.Lead{
		ID:       "1",
		Name:     "José Silva",
		Phone:    "11999998888",
		Origin:   "Indicação",
		Value:    5000,
		Stage:    model.StageNegotiation,
		NextStep: "Enviar contrato",
	}
	incoming := model.Lead{
		ID:         "999",
		Name:       "Nome Errado",
		Phone:      "11999998888",
		NextStep:   "Ligar",
		Value:      0,
		Stage:      model.StageNew,
		ImportMeta: metaWith(model.FieldPhone, model.FieldNextStep),
	}

	merged := MergeMatched(existing, incoming)

	assert.Equal(t, "1", merged.ID, "id always stays with the existing record")
	assert.Equal(t, "José Silva", merged.Name, "name was not provided by the source")
	assert.Equal(t, "Ligar", merged.NextStep)
	assert.Equal(t, "Indicação", merged.Origin)
	assert.InDelta(t, 5000, merged.Value, 1e-9)
	assert.Equal(t, model.StageNegotiation, merged.Stage)
	assert.Nil(t, merged.ImportMeta)
	assert.GreaterOrEqual(t, merged.UpdatedAt, existing.UpdatedAt)
}

func TestMergeMatched_NoMetaTrustedWholesale(t *testing.T) {
	existing := model.Lead{ID: "1", Name: "Antigo", Phone: "11999998888", Value: 100}
	incoming := model.Lead{ID: "2", Name: "Novo Nome", Phone: "11988887777", Value: 900}

	merged := MergeMatched(existing, incoming)

	assert.Equal(t, "1", merged.ID)
	assert.Equal(t, "Novo Nome", merged.Name)
	assert.Equal(t, "11988887777", merged.Phone)
	assert.InDelta(t, 900, merged.Value, 1e-9)
}

func TestMergeMatched_InvalidStageKeepsExisting(t *testing.T) {
	existing := model.Lead{ID: "1", Name: "Ana", Stage: model.StageSimulation}
	incoming := model.Lead{ID: "1", Name: "Ana", Stage: "Etapa Inventada"}

	merged := MergeMatched(existing, incoming)
	assert.Equal(t, model.StageSimulation, merged.Stage)
}

func TestMergeMatched_LeavingLostClearsReason(t *testing.T) {
	existing := model.Lead{
		ID:         "1",
		Name:       "Ana",
		Stage:      model.StageLost,
		LossReason: "Preço alto",
	}
	incoming := model.Lead{
		ID:         "1",
		Name:       "Ana",
		Stage:      model.StageNegotiation,
		ImportMeta: metaWith(model.FieldStage),
	}

	merged := MergeMatched(existing, incoming)
	assert.Equal(t, model.StageNegotiation, merged.Stage)
	assert.Empty(t, merged.LossReason)
}

func TestMergeMatched_StayingLostKeepsReason(t *testing.T) {
	existing := model.Lead{
		ID:         "1",
		Name:       "Ana",
		Stage:      model.StageLost,
		LossReason: "Preço alto",
	}
	incoming := model.Lead{
		ID:         "1",
		Name:       "Ana",
		ImportMeta: metaWith(model.FieldPhone),
		Phone:      "11999998888",
	}

	merged := MergeMatched(existing, incoming)
	assert.Equal(t, model.StageLost, merged.Stage)
	assert.Equal(t, "Preço alto", merged.LossReason)
}

func TestMergeMatched_DoesNotMutateInputs(t *testing.T) {
	existing := model.Lead{ID: "1", Name: "Ana", Tags: []string{"vip"}}
	incoming := model.Lead{ID: "1", Name: "Ana Paula", Tags: []string{"quente"}}

	_ = MergeMatched(existing, incoming)

	assert.Equal(t, "Ana", existing.Name)
	assert.Equal(t, []string{"vip"}, existing.Tags)
	assert.Equal(t, []string{"quente"}, incoming.Tags)
}

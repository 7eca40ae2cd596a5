package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sovcrm/crm-cli/internal/model"
)

func TestMapRow(t *testing.T) {
	headers := []string{"Nome", "Telefone", "Valor"}

	record := MapRow(headers, []string{"Ana", "11999998888"})
	assert.Equal(t, "Ana", record["Nome"])
	assert.Equal(t, "11999998888", record["Telefone"])
	assert.Equal(t, "", record["Valor"], "short rows pad with empty strings")
}

func TestFromTabular_PortugueseHeaders(t *testing.T) {
	headers := []string{
		"Nome do Cliente", "Telefone", "Status do Cliente",
		"Valor do Consórcio", "Data de Retorno", "E-mail",
		"Consórcio de Interesse", "Nome do Consultor",
	}
	rows := []RawRecord{
		MapRow(headers, []string{
			"Maria Clara", "(11) 99999-8888", "não quer mais",
			"R$ 50.000,00", "15/03/2024", "maria@example.com",
			"Imóvel", "Ana",
		}),
	}

	raws := FromTabular(rows, nil)
	require.Len(t, raws, 1)

	leads := NormalizeRecords(raws)
	require.Len(t, leads, 1)
	lead := leads[0]

	assert.Equal(t, "Maria Clara", lead.Name)
	assert.Equal(t, "(11) 99999-8888", lead.Phone)
	assert.Equal(t, model.StageLost, lead.Stage, "lost sentiment in the status column")
	assert.InDelta(t, 50000, lead.Value, 1e-9)
	assert.Equal(t, "Ana", lead.Owner)
	assert.Equal(t, []string{"imóvel"}, lead.Tags)

	// Signals without a first-class field survive inside obs.
	assert.Contains(t, lead.Obs, "Email: maria@example.com")
	assert.Contains(t, lead.Obs, "Data de Retorno: 15/03/2024 00:00")

	// The return date doubles as the next step when none is given.
	assert.Equal(t, "15/03/2024 00:00", lead.NextStep)

	// Provenance reflects what the row actually carried.
	require.NotNil(t, lead.ImportMeta)
	assert.True(t, lead.ImportMeta.Has(model.FieldName))
	assert.True(t, lead.ImportMeta.Has(model.FieldPhone))
	assert.True(t, lead.ImportMeta.Has(model.FieldStage))
	assert.False(t, lead.ImportMeta.Has(model.FieldLossReason))
	assert.False(t, lead.ImportMeta.Has(model.FieldCreatedAt))
}

func TestFromTabular_StageColumnWinsOverStatus(t *testing.T) {
	headers := []string{"Nome", "Etapa", "Status"}
	rows := []RawRecord{
		MapRow(headers, []string{"Ana", "Fechado", "sem interesse"}),
	}

	leads := NormalizeRecords(FromTabular(rows, nil))
	require.Len(t, leads, 1)
	assert.Equal(t, model.StageClosed, leads[0].Stage)
}

func TestFromTabular_AttachesTaskSheet(t *testing.T) {
	leadHeaders := []string{"id", "Nome"}
	taskHeaders := []string{"leadId", "Descricao", "Feito"}

	leadRows := []RawRecord{
		MapRow(leadHeaders, []string{"1", "Ana"}),
		MapRow(leadHeaders, []string{"2", "Bruno"}),
	}
	taskRows := []RawRecord{
		MapRow(taskHeaders, []string{"1", "Ligar de volta", "sim"}),
		MapRow(taskHeaders, []string{"1", "Enviar proposta", ""}),
		MapRow(taskHeaders, []string{"", "Sem lead", "não"}),
	}

	leads := NormalizeRecords(FromTabular(leadRows, taskRows))
	require.Len(t, leads, 2)

	require.Len(t, leads[0].Tasks, 2)
	assert.Equal(t, "Ligar de volta", leads[0].Tasks[0].Desc)
	assert.True(t, leads[0].Tasks[0].Done)
	assert.False(t, leads[0].Tasks[1].Done)
	assert.Empty(t, leads[1].Tasks)
	assert.True(t, leads[0].ImportMeta.Has(model.FieldTasks))
}

func TestFromTabular_OriginColumn(t *testing.T) {
	headers := []string{"Nome", "Origem"}
	rows := []RawRecord{
		MapRow(headers, []string{"Ana", "Instagram"}),
		MapRow(headers, []string{"Bruno", ""}),
	}

	leads := NormalizeRecords(FromTabular(rows, nil))
	require.Len(t, leads, 2)
	assert.Equal(t, "Instagram", leads[0].Origin)
	assert.Equal(t, DefaultOrigin, leads[1].Origin)
	assert.True(t, leads[0].ImportMeta.Has(model.FieldOrigin))
	assert.False(t, leads[1].ImportMeta.Has(model.FieldOrigin))
}

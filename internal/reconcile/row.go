package reconcile

import (
	"fmt"
	"strings"

	"github.com/sovcrm/crm-cli/internal/model"
)

// Header alias lists for tabular imports. Lookup is case and diacritic
// insensitive via PickValue, so each alias only needs one spelling.
var (
	leadIDKeys     = []string{"id", "leadId", "lead_id"}
	nameKeys       = []string{"name", "nome", "nome do cliente", "cliente"}
	phoneKeys      = []string{"phone", "telefone", "celular", "numero", "numero de contato", "contato", "whatsapp", "zap"}
	ownerKeys      = []string{"owner", "responsavel", "consultor", "nome do consultor"}
	originKeys     = []string{"origin", "origem", "lead", "leads"}
	stageKeys      = []string{"stage", "etapa"}
	statusKeys     = []string{"status", "status do cliente", "status cliente"}
	valueKeys      = []string{"value", "valor", "valor do consorcio"}
	nextStepKeys   = []string{"nextStep", "next_step", "proximo passo", "passo seguinte"}
	returnDateKeys = []string{"data de retorno", "retorno", "data retorno"}
	scheduleKeys   = []string{"agendamento"}
	tagsKeys       = []string{"tags", "tag", "consorcio de interesse", "interesse"}
	obsKeys        = []string{"obs", "observacoes", "nota", "notas"}
	emailKeys      = []string{"email", "e-mail", "gmail"}
	lossReasonKeys = []string{"lossReason", "loss_reason", "motivo perda", "motivo de perda"}
	createdAtKeys  = []string{"createdAt", "created_at", "criadoem", "criado em", "carimbo de data/hora", "data do atendimento", "data atendimento"}
	updatedAtKeys  = []string{"updatedAt", "updated_at", "atualizadoem", "atualizado em"}

	taskLeadKeys = []string{"leadId", "lead_id", "id", "lead"}
	taskDescKeys = []string{"desc", "descricao", "tarefa", "task"}
	taskDoneKeys = []string{"done", "feito", "concluida", "ok"}
	taskDateKeys = []string{"createdAt", "created_at", "data", "date", "criadoem", "criado em"}
)

// MapRow pairs each header with the corresponding cell, producing a raw
// record. Rows shorter than the header list get empty strings.
func MapRow(headers []string, row []string) RawRecord {
	record := make(RawRecord, len(headers))
	for i, h := range headers {
		if i < len(row) {
			record[h] = row[i]
		} else {
			record[h] = ""
		}
	}
	return record
}

// FromTabular converts spreadsheet lead rows (plus an optional task sheet)
// into raw records with provenance, ready for NormalizeRecords. Foreign
// export signals without a first-class field — email, return date,
// scheduling — are folded into obs so the information survives the import.
func FromTabular(leadRows, taskRows []RawRecord) []RawRecord {
	tasksByLead := groupTaskRows(taskRows)

	raws := make([]RawRecord, 0, len(leadRows))
	for _, row := range leadRows {
		id := PickValue(row, leadIDKeys...)
		name := PickValue(row, nameKeys...)
		phone := PickValue(row, phoneKeys...)
		owner := PickValue(row, ownerKeys...)
		origin := PickValue(row, originKeys...)
		stageRaw := PickValue(row, stageKeys...)
		statusRaw := PickValue(row, statusKeys...)
		valueRaw := PickValue(row, valueKeys...)
		nextStepRaw := PickValue(row, nextStepKeys...)
		returnDate := PickValue(row, returnDateKeys...)
		schedule := PickValue(row, scheduleKeys...)
		tags := PickValue(row, tagsKeys...)
		obs := PickValue(row, obsKeys...)
		email := PickValue(row, emailKeys...)
		lossReason := PickValue(row, lossReasonKeys...)
		createdAt := PickValue(row, createdAtKeys...)
		updatedAt := PickValue(row, updatedAtKeys...)

		nextStepDate := returnDate
		if nextStepDate == nil {
			nextStepDate = schedule
		}
		nextStep := SanitizeString(nextStepRaw, maxNextStepLen)
		if nextStep == "" && nextStepDate != nil {
			nextStep = SanitizeString(FormatDateTime(nextStepDate), maxNextStepLen)
		}

		stage := ClassifyStage(Stringify(stageRaw))
		if stage == "" {
			stage = ClassifyStage(Stringify(statusRaw))
		}
		if stage == "" && IndicatesLost(Stringify(statusRaw)) {
			stage = model.StageLost
		}

		var obsParts []string
		if Present(obs) {
			obsParts = append(obsParts, Stringify(obs))
		}
		if Present(email) {
			obsParts = append(obsParts, fmt.Sprintf("Email: %s", Stringify(email)))
		}
		if Present(returnDate) {
			obsParts = append(obsParts, fmt.Sprintf("Data de Retorno: %s", FormatDateTime(returnDate)))
		}
		if Present(schedule) {
			obsParts = append(obsParts, fmt.Sprintf("Agendamento: %s", FormatDateTime(schedule)))
		}
		obsWithExtras := strings.TrimSpace(strings.Join(obsParts, "\n"))

		meta := &model.ImportMeta{Provided: make(map[string]bool)}
		markIf(meta, model.FieldID, Present(id))
		markIf(meta, model.FieldName, Present(name))
		markIf(meta, model.FieldPhone, Present(phone))
		markIf(meta, model.FieldOwner, Present(owner))
		markIf(meta, model.FieldOrigin, Present(origin))
		markIf(meta, model.FieldStage, Present(stageRaw) || Present(statusRaw))
		markIf(meta, model.FieldValue, Present(valueRaw))
		markIf(meta, model.FieldNextStep, Present(nextStepRaw) || Present(nextStepDate))
		markIf(meta, model.FieldTags, Present(tags))
		markIf(meta, model.FieldObs, obsWithExtras != "")
		markIf(meta, model.FieldLossReason, Present(lossReason))
		markIf(meta, model.FieldCreatedAt, Present(createdAt))
		markIf(meta, model.FieldUpdatedAt, Present(updatedAt))

		raw := RawRecord{
			model.FieldName:       name,
			model.FieldPhone:      phone,
			model.FieldOrigin:     origin,
			model.FieldStage:      string(stage),
			model.FieldValue:      valueRaw,
			model.FieldNextStep:   nextStep,
			model.FieldTags:       tags,
			model.FieldObs:        obsWithExtras,
			model.FieldLossReason: lossReason,
			model.FieldOwner:      owner,
			model.FieldCreatedAt:  createdAt,
			model.FieldUpdatedAt:  updatedAt,
			"__importMeta":        meta,
		}
		if Present(id) {
			raw[model.FieldID] = id
		}

		if key := strings.TrimSpace(Stringify(id)); key != "" {
			if tasks, ok := tasksByLead[key]; ok {
				raw[model.FieldTasks] = tasks
				meta.Mark(model.FieldTasks)
			}
		}

		raws = append(raws, raw)
	}
	return raws
}

func groupTaskRows(taskRows []RawRecord) map[string][]RawRecord {
	grouped := make(map[string][]RawRecord)
	for _, row := range taskRows {
		leadID := strings.TrimSpace(Stringify(PickValue(row, taskLeadKeys...)))
		desc := Stringify(PickValue(row, taskDescKeys...))
		if leadID == "" || strings.TrimSpace(desc) == "" {
			continue
		}
		entry := RawRecord{
			"desc": desc,
			"done": ParseBool(PickValue(row, taskDoneKeys...)),
		}
		if createdAt := PickValue(row, taskDateKeys...); createdAt != nil {
			entry["createdAt"] = createdAt
		}
		grouped[leadID] = append(grouped[leadID], entry)
	}
	return grouped
}

func markIf(meta *model.ImportMeta, field string, provided bool) {
	if provided {
		meta.Mark(field)
	}
}

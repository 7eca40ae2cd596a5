package reconcile

import (
	"time"

	"github.com/sovcrm/crm-cli/internal/model"
)

// MergeMatched combines a matched existing lead with an incoming one.
// Incoming values win only for fields the source explicitly provided;
// everything else keeps the existing value. The id always stays with the
// existing record and updatedAt is stamped with merge time. The result is
// re-run through the record normalizer so caps and sanitization hold after
// the merge.
func MergeMatched(existing, incoming model.Lead) model.Lead {
	merged := existing.Clone()

	if takeIncoming(incoming, model.FieldName) {
		merged.Name = incoming.Name
	}
	if takeIncoming(incoming, model.FieldPhone) {
		merged.Phone = incoming.Phone
	}
	if takeIncoming(incoming, model.FieldOrigin) {
		merged.Origin = incoming.Origin
	}
	if takeIncoming(incoming, model.FieldValue) {
		merged.Value = incoming.Value
	}
	if takeIncoming(incoming, model.FieldNextStep) {
		merged.NextStep = incoming.NextStep
	}
	if takeIncoming(incoming, model.FieldStage) {
		merged.Stage = incoming.Stage
	}
	if takeIncoming(incoming, model.FieldLossReason) {
		merged.LossReason = incoming.LossReason
	}
	if takeIncoming(incoming, model.FieldObs) {
		merged.Obs = incoming.Obs
	}
	if takeIncoming(incoming, model.FieldOwner) {
		merged.Owner = incoming.Owner
	}
	if takeIncoming(incoming, model.FieldTags) {
		merged.Tags = append([]string(nil), incoming.Tags...)
	}
	if takeIncoming(incoming, model.FieldTasks) {
		merged.Tasks = append([]model.Task(nil), incoming.Tasks...)
	}
	if takeIncoming(incoming, model.FieldCreatedAt) {
		merged.CreatedAt = incoming.CreatedAt
	}

	merged.ID = existing.ID
	merged.UpdatedAt = time.Now().UnixMilli()
	merged.ImportMeta = nil

	// Never silently adopt an unrecognized stage from the merge.
	if !model.ValidStage(merged.Stage) {
		merged.Stage = existing.Stage
		if !model.ValidStage(merged.Stage) {
			merged.Stage = model.StageNew
		}
	}
	if merged.Stage != model.StageLost {
		merged.LossReason = ""
	}

	if normalized, ok := NormalizeRecord(FromLead(merged)); ok {
		normalized.ID = existing.ID
		normalized.UpdatedAt = merged.UpdatedAt
		return normalized
	}
	return merged
}

// takeIncoming decides field precedence: leads without import metadata are
// trusted wholesale (interactive edits), imported leads only contribute
// fields their source explicitly provided.
func takeIncoming(incoming model.Lead, field string) bool {
	if incoming.ImportMeta == nil {
		return true
	}
	return incoming.ImportMeta.Has(field)
}

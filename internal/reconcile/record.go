package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sovcrm/crm-cli/internal/model"
)

// RawRecord is one imported row or object with arbitrary string keys, as
// produced by JSON decoding or by the tabular row mapper.
type RawRecord map[string]any

// Field caps applied by the record normalizer.
const (
	maxNameLen       = 120
	maxPhoneLen      = 30
	maxOriginLen     = 60
	maxNextStepLen   = 160
	maxTaskDescLen   = 160
	maxObsLen        = 2000
	maxLossReasonLen = 60
	maxOwnerLen      = 60
	maxIDLen         = 200
	maxTasks         = 200
)

// DefaultOrigin is assigned when a record carries no origin.
const DefaultOrigin = "Geral"

// Present reports whether a raw cell value carries a usable, non-empty
// value. This is the provenance test: a field that fails it is defaulted,
// not provided.
func Present(v any) bool {
	return v != nil && strings.TrimSpace(Stringify(v)) != ""
}

// PickValue resolves a cell from a row by trying literal keys first, then a
// case/diacritic-insensitive fallback over normalized header names. Returns
// nil when no key holds a non-empty value.
func PickValue(row RawRecord, keys ...string) any {
	if row == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := row[k]; ok && Present(v) {
			return v
		}
	}
	normalized := make(map[string]any, len(row))
	for k, v := range row {
		normalized[NormalizeComparable(k)] = v
	}
	for _, k := range keys {
		if v, ok := normalized[NormalizeComparable(k)]; ok && Present(v) {
			return v
		}
	}
	return nil
}

// NormalizeRecords converts raw imported records into canonical leads.
// Records that are not objects or that lack a resolvable name are skipped;
// ids are deduplicated within the batch. Skipping is deliberate best-effort
// policy: messy rows never abort the batch.
func NormalizeRecords(raws []RawRecord) []model.Lead {
	ids := make(map[string]struct{}, len(raws))
	leads := make([]model.Lead, 0, len(raws))
	for i, raw := range raws {
		lead, ok := normalizeRecord(raw, ids, i)
		if !ok {
			continue
		}
		leads = append(leads, lead)
	}
	return leads
}

// NormalizeRecord converts a single raw record into a canonical lead.
// Reusable by single-record creation paths; ok is false when the record has
// no usable name.
func NormalizeRecord(raw RawRecord) (model.Lead, bool) {
	return normalizeRecord(raw, make(map[string]struct{}, 1), 0)
}

func normalizeRecord(raw RawRecord, ids map[string]struct{}, seq int) (model.Lead, bool) {
	if raw == nil {
		return model.Lead{}, false
	}

	name := SanitizeString(raw[model.FieldName], maxNameLen)
	if name == "" {
		return model.Lead{}, false
	}

	id := resolveID(raw[model.FieldID], ids, seq)

	stage := ClassifyStage(Stringify(raw[model.FieldStage]))
	if stage == "" {
		stage = model.StageNew
	}

	now := time.Now().UnixMilli()
	createdAt := now
	if ms := ParseDate(raw[model.FieldCreatedAt]); ms != nil {
		createdAt = *ms
	}
	updatedAt := createdAt
	if ms := ParseDate(raw[model.FieldUpdatedAt]); ms != nil {
		updatedAt = *ms
	}

	origin := SanitizeString(raw[model.FieldOrigin], maxOriginLen)
	if origin == "" {
		origin = DefaultOrigin
	}

	// Deal values are estimates; a negative one is always input noise.
	value := ParseCurrency(raw[model.FieldValue])
	if value < 0 {
		value = 0
	}

	lead := model.Lead{
		ID:         id,
		Name:       name,
		Phone:      SanitizePhone(raw[model.FieldPhone], maxPhoneLen),
		Origin:     origin,
		Value:      value,
		Stage:      stage,
		NextStep:   SanitizeString(raw[model.FieldNextStep], maxNextStepLen),
		Tasks:      normalizeTasks(raw[model.FieldTasks]),
		Tags:       ParseTags(raw[model.FieldTags]),
		LossReason: SanitizeString(raw[model.FieldLossReason], maxLossReasonLen),
		Obs:        SanitizeString(raw[model.FieldObs], maxObsLen),
		Owner:      SanitizeString(raw[model.FieldOwner], maxOwnerLen),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		ImportMeta: importMetaOf(raw["__importMeta"]),
	}
	return lead, true
}

// resolveID keeps a source id when present, stringified; absent ids are
// generated. Collisions within the batch increment numeric ids and suffix
// string ids with a short random token.
func resolveID(v any, ids map[string]struct{}, seq int) string {
	var id string
	isNum := false
	if n, ok := numeric(v); ok {
		id = strconv.FormatInt(int64(n), 10)
		isNum = true
	} else if s := SanitizeString(v, maxIDLen); s != "" {
		id = s
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			isNum = true
		}
	} else {
		id = strconv.FormatInt(time.Now().UnixMilli()+int64(seq), 10)
		isNum = true
	}

	for {
		if _, taken := ids[id]; !taken {
			break
		}
		if isNum {
			n, _ := strconv.ParseInt(id, 10, 64)
			id = strconv.FormatInt(n+1, 10)
		} else {
			id = id + "-" + uuid.NewString()[:4]
		}
	}
	ids[id] = struct{}{}
	return id
}

func normalizeTasks(v any) []model.Task {
	var entries []RawRecord
	switch t := v.(type) {
	case nil:
		return []model.Task{}
	case []model.Task:
		// Re-normalization of an already-typed lead.
		for _, task := range t {
			entry := RawRecord{"desc": task.Desc, "done": task.Done}
			if task.CreatedAt != nil {
				entry["createdAt"] = *task.CreatedAt
			}
			entries = append(entries, entry)
		}
	case []RawRecord:
		entries = t
	case []any:
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				entries = append(entries, RawRecord(m))
			}
		}
	default:
		return []model.Task{}
	}

	if len(entries) > maxTasks {
		entries = entries[:maxTasks]
	}
	tasks := make([]model.Task, 0, len(entries))
	for _, entry := range entries {
		desc := SanitizeString(entry["desc"], maxTaskDescLen)
		if desc == "" {
			continue
		}
		tasks = append(tasks, model.Task{
			Desc:      desc,
			Done:      ParseBool(entry["done"]),
			CreatedAt: ParseDate(entry["createdAt"]),
		})
	}
	return tasks
}

func importMetaOf(v any) *model.ImportMeta {
	switch t := v.(type) {
	case *model.ImportMeta:
		return t.Clone()
	case map[string]any:
		provided, ok := t["provided"].(map[string]any)
		if !ok {
			return nil
		}
		meta := &model.ImportMeta{Provided: make(map[string]bool, len(provided))}
		for k, val := range provided {
			if b, ok := val.(bool); ok && b {
				meta.Provided[k] = true
			}
		}
		return meta
	}
	return nil
}

// FromLead rebuilds a raw record from a typed lead so it can be re-run
// through the normalizer, guaranteeing caps and sanitization hold after a
// merge, and so partial updates can overlay new values on a stored lead.
func FromLead(l model.Lead) RawRecord {
	return RawRecord{
		model.FieldID:         l.ID,
		model.FieldName:       l.Name,
		model.FieldPhone:      l.Phone,
		model.FieldOrigin:     l.Origin,
		model.FieldValue:      l.Value,
		model.FieldStage:      string(l.Stage),
		model.FieldNextStep:   l.NextStep,
		model.FieldTasks:      l.Tasks,
		model.FieldTags:       l.Tags,
		model.FieldLossReason: l.LossReason,
		model.FieldObs:        l.Obs,
		model.FieldOwner:      l.Owner,
		model.FieldCreatedAt:  l.CreatedAt,
		model.FieldUpdatedAt:  l.UpdatedAt,
	}
}

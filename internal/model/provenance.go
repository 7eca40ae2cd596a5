package model

// Field keys used in import provenance maps. They match the Lead json tags.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldPhone      = "phone"
	FieldOrigin     = "origin"
	FieldValue      = "value"
	FieldStage      = "stage"
	FieldNextStep   = "nextStep"
	FieldTasks      = "tasks"
	FieldTags       = "tags"
	FieldLossReason = "lossReason"
	FieldObs        = "obs"
	FieldOwner      = "owner"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
)

// ImportMeta is the transient, import-only provenance bag. Provided records
// which fields were explicitly present in the source record, as opposed to
// defaulted during normalization. It drives merge precedence and is never
// persisted.
type ImportMeta struct {
	Provided map[string]bool `json:"provided"`
}

// Has reports whether the source explicitly supplied the given field.
func (m *ImportMeta) Has(field string) bool {
	return m != nil && m.Provided[field]
}

// Mark flags a field as explicitly provided by the source.
func (m *ImportMeta) Mark(field string) {
	if m.Provided == nil {
		m.Provided = make(map[string]bool)
	}
	m.Provided[field] = true
}

// Clone returns a deep copy; nil stays nil.
func (m *ImportMeta) Clone() *ImportMeta {
	if m == nil {
		return nil
	}
	out := &ImportMeta{Provided: make(map[string]bool, len(m.Provided))}
	for k, v := range m.Provided {
		out.Provided[k] = v
	}
	return out
}

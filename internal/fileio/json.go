// Package fileio parses lead import files (JSON, CSV, XLSX) into raw
// records and writes export files. All sources funnel into the same
// reconcile.RawRecord shape so one normalizer serves every entry point.
package fileio

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sovcrm/crm-cli/internal/model"
	"github.com/sovcrm/crm-cli/internal/reconcile"
)

// DecodeLeadsPayload decodes a JSON import payload: either a bare array of
// lead-like objects or an object of the form {"leads": [...]}. Any other
// top-level shape is rejected before any record is processed. Non-object
// elements are kept as nil records so the normalizer skips them without
// aborting the batch.
func DecodeLeadsPayload(data []byte) ([]reconcile.RawRecord, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, eris.Wrap(err, "json: decode payload")
	}

	var elements []any
	switch t := payload.(type) {
	case []any:
		elements = t
	case map[string]any:
		arr, ok := t["leads"].([]any)
		if !ok {
			return nil, eris.New("json: expected an array of leads or an object { leads: [...] }")
		}
		elements = arr
	default:
		return nil, eris.New("json: expected an array of leads or an object { leads: [...] }")
	}

	records := make([]reconcile.RawRecord, 0, len(elements))
	for _, el := range elements {
		if m, ok := el.(map[string]any); ok {
			records = append(records, reconcile.RawRecord(m))
		} else {
			records = append(records, nil)
		}
	}
	return records, nil
}

// ExportPayload is the JSON export envelope.
type ExportPayload struct {
	Schema     string       `json:"schema"`
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Leads      []model.Lead `json:"leads"`
}

// EncodeLeadsPayload renders leads as an indented JSON export document.
func EncodeLeadsPayload(leads []model.Lead, exportedAt string) ([]byte, error) {
	payload := ExportPayload{
		Schema:     "crm-leads",
		Version:    1,
		ExportedAt: exportedAt,
		Leads:      leads,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "json: encode payload")
	}
	return data, nil
}

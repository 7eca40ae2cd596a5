package reconcile

import (
	"github.com/sovcrm/crm-cli/internal/model"
)

// Result is the outcome of reconciling an import batch against an existing
// collection.
type Result struct {
	Merged  []model.Lead `json:"merged"`
	Added   int          `json:"added"`
	Updated int          `json:"updated"`
}

// Reconcile additively merges incoming leads into a working copy of the
// existing collection. Incoming leads are processed strictly in input order
// and matched against the current working copy, so earlier merges in the
// same batch are visible to later ones. Matched leads are merged in place;
// unmatched leads are appended. Pure: neither input slice is mutated, and
// the output is deterministic for a given input pair. Callers decide
// whether to persist the result (merge mode) or to replace the collection
// outright, and must serialize concurrent reconciliations against the same
// collection themselves.
func Reconcile(existing, incoming []model.Lead) Result {
	merged := make([]model.Lead, 0, len(existing)+len(incoming))
	for _, l := range existing {
		merged = append(merged, l.WithoutImportMeta())
	}

	res := Result{}
	for _, lead := range incoming {
		idx := FindMatch(merged, lead)
		if idx >= 0 {
			merged[idx] = MergeMatched(merged[idx], lead)
			res.Updated++
			continue
		}
		merged = append(merged, lead.WithoutImportMeta())
		res.Added++
	}

	res.Merged = merged
	return res
}

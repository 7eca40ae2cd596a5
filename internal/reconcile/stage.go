package reconcile

import (
	"strings"

	"github.com/sovcrm/crm-cli/internal/model"
)

// stageRule maps keyword fragments in normalized stage text to a pipeline
// stage. Rules are ordered most-specific first; the first hit wins, which is
// how ambiguous overlapping labels ("novo" inside "negociação perdida") get
// resolved deterministically.
type stageRule struct {
	stage    model.Stage
	keywords []string
}

var stageRules = []stageRule{
	{model.StageLost, []string{"perdido", "nao quer", "sem interesse", "desinteress", "cancelad", "desist"}},
	{model.StageClosed, []string{"fechado", "ganho", "venda", "vendido"}},
	{model.StageNegotiation, []string{"negoci", "proposta"}},
	{model.StageSimulation, []string{"simula", "cotac", "orcament"}},
	{model.StageQualification, []string{"qualifica", "contat"}},
	{model.StageSite, []string{"site"}},
	{model.StageNew, []string{"novo", "lead"}},
}

// ClassifyStage maps free-text stage or status labels onto the pipeline
// enumeration. Exact case/diacritic-insensitive matches win immediately;
// otherwise ordered keyword heuristics apply. Returns "" when nothing
// matches so the caller can apply its own default — never an arbitrary
// passthrough of the input.
func ClassifyStage(raw string) model.Stage {
	text := SanitizeString(raw, 80)
	if text == "" {
		return ""
	}

	normalized := NormalizeComparable(text)
	if normalized == "" {
		return ""
	}
	for _, st := range model.Stages {
		if NormalizeComparable(string(st)) == normalized {
			return st
		}
	}

	for _, rule := range stageRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.stage
			}
		}
	}
	return ""
}

// IndicatesLost reports whether free-text status wording signals a lost
// deal ("não quer", "sem interesse", ...). Used for status columns that
// carry sentiment rather than a stage label.
func IndicatesLost(raw string) bool {
	normalized := NormalizeComparable(raw)
	if normalized == "" {
		return false
	}
	for _, kw := range stageRules[0].keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}

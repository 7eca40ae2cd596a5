package model

// Stage is the pipeline position of a lead, drawn from a fixed ordered set.
type Stage string

const (
	StageSite          Stage = "Leads do site"
	StageNew           Stage = "Novo lead"
	StageQualification Stage = "Qualificação"
	StageSimulation    Stage = "Simulação"
	StageNegotiation   Stage = "Negociação"
	StageClosed        Stage = "Fechado"
	StageLost          Stage = "Perdido"
)

// Stages lists all pipeline stages in board order.
var Stages = []Stage{
	StageSite,
	StageNew,
	StageQualification,
	StageSimulation,
	StageNegotiation,
	StageClosed,
	StageLost,
}

// ValidStage reports whether s is a member of the pipeline enumeration.
func ValidStage(s Stage) bool {
	for _, st := range Stages {
		if st == s {
			return true
		}
	}
	return false
}

// Task is a follow-up item attached to a lead. Order is insertion order.
type Task struct {
	Desc      string `json:"desc"`
	Done      bool   `json:"done"`
	CreatedAt *int64 `json:"createdAt"` // epoch ms, nil when unknown
}

// Lead is a sales prospect tracked through the pipeline.
// CreatedAt/UpdatedAt are epoch milliseconds.
type Lead struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Phone      string      `json:"phone"`
	Origin     string      `json:"origin"`
	Value      float64     `json:"value"`
	Stage      Stage       `json:"stage"`
	NextStep   string      `json:"nextStep"`
	Tasks      []Task      `json:"tasks"`
	Tags       []string    `json:"tags"`
	LossReason string      `json:"lossReason"`
	Obs        string      `json:"obs"`
	Owner      string      `json:"owner"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
	ImportMeta *ImportMeta `json:"__importMeta,omitempty"`
}

// Clone returns a deep copy of the lead, import metadata included.
func (l Lead) Clone() Lead {
	out := l
	if l.Tasks != nil {
		out.Tasks = make([]Task, len(l.Tasks))
		copy(out.Tasks, l.Tasks)
	}
	if l.Tags != nil {
		out.Tags = make([]string, len(l.Tags))
		copy(out.Tags, l.Tags)
	}
	if l.ImportMeta != nil {
		out.ImportMeta = l.ImportMeta.Clone()
	}
	return out
}

// WithoutImportMeta returns a deep copy with the transient import
// metadata stripped. Leads are persisted in this form only.
func (l Lead) WithoutImportMeta() Lead {
	out := l.Clone()
	out.ImportMeta = nil
	return out
}

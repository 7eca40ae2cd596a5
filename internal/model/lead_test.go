package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStage(t *testing.T) {
	for _, st := range Stages {
		assert.True(t, ValidStage(st))
	}
	assert.False(t, ValidStage("Etapa Inventada"))
	assert.False(t, ValidStage(""))
}

func TestLeadClone_IsDeep(t *testing.T) {
	orig := Lead{
		ID:   "1",
		Name: "Ana",
		Tags: []string{"vip"},
		Tasks: []Task{
			{Desc: "Ligar", Done: false},
		},
		ImportMeta: &ImportMeta{Provided: map[string]bool{"name": true}},
	}

	clone := orig.Clone()
	clone.Tags[0] = "mudou"
	clone.Tasks[0].Done = true
	clone.ImportMeta.Mark("phone")

	assert.Equal(t, "vip", orig.Tags[0])
	assert.False(t, orig.Tasks[0].Done)
	assert.False(t, orig.ImportMeta.Has("phone"))
}

func TestWithoutImportMeta(t *testing.T) {
	lead := Lead{ID: "1", Name: "Ana", ImportMeta: &ImportMeta{Provided: map[string]bool{"name": true}}}

	stripped := lead.WithoutImportMeta()
	assert.Nil(t, stripped.ImportMeta)
	assert.NotNil(t, lead.ImportMeta, "original is untouched")
}

func TestImportMeta_NilSafety(t *testing.T) {
	var meta *ImportMeta
	assert.False(t, meta.Has("name"))
	assert.Nil(t, meta.Clone())

	meta = &ImportMeta{}
	meta.Mark("name")
	assert.True(t, meta.Has("name"))
}

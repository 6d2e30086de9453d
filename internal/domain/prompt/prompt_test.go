package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alanyang/iobos/internal/domain/prompt"
)

func strPtr(s string) *string { return &s }

func TestPatch_ApplyMergesOnlySetFields(t *testing.T) {
	existing := prompt.Record{Role: "R", Color: "C", Greeting: "G", Prompt: "P"}

	got := prompt.Patch{Color: strPtr("C2")}.Apply(existing)

	assert.Equal(t, prompt.Record{Role: "R", Color: "C2", Greeting: "G", Prompt: "P"}, got)
}

func TestPatch_ApplyCanClearField(t *testing.T) {
	existing := prompt.Record{Role: "R", Color: "C", Greeting: "G", Prompt: "P"}

	got := prompt.Patch{Prompt: strPtr("")}.Apply(existing)

	assert.Equal(t, "", got.Prompt)
	assert.False(t, got.Loaded())
}

func TestPatch_Empty(t *testing.T) {
	assert.True(t, prompt.Patch{}.Empty())
	assert.False(t, prompt.Patch{Greeting: strPtr("hi")}.Empty())
}

func TestRecord_ValidAndLoaded(t *testing.T) {
	full := prompt.Record{Role: "R", Color: "C", Greeting: "G", Prompt: "P"}
	assert.True(t, full.Valid())
	assert.True(t, full.Loaded())

	displayOnly := prompt.Record{Role: "R", Color: "C", Greeting: "G"}
	assert.False(t, displayOnly.Valid())
	assert.False(t, displayOnly.Loaded())
}

func TestAgentID_CaseInsensitive(t *testing.T) {
	assert.Equal(t, "GENESIS", prompt.AgentID(" genesis ").Key())
	assert.True(t, prompt.AgentID("Oracle").Equal("ORACLE"))
	assert.False(t, prompt.AgentID("ORACLE").Equal("EXODUS"))
}

func TestDocument_Lookup(t *testing.T) {
	doc := prompt.Document{"BABYLON": {Role: "Advisor"}}

	key, r, ok := doc.Lookup("babylon")
	assert.True(t, ok)
	assert.Equal(t, prompt.AgentID("BABYLON"), key)
	assert.Equal(t, "Advisor", r.Role)

	_, _, ok = doc.Lookup("GENESIS")
	assert.False(t, ok)
}

func TestDefault_NamesAgent(t *testing.T) {
	r := prompt.Default("ORACLE")

	assert.Equal(t, prompt.DefaultRole, r.Role)
	assert.Equal(t, prompt.DefaultColor, r.Color)
	assert.Contains(t, r.Greeting, "ORACLE")
	assert.Empty(t, r.Prompt)
	assert.False(t, r.Loaded())
}

package prompt

import (
	"math/rand/v2"
	"testing"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hour(h int) *int { return &h }

func newSelector(t *testing.T, seed uint64) *Selector {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewSelector(catalog, rand.New(rand.NewPCG(seed, seed)), "")
}

func TestDefaultCatalogLoads(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, catalog)

	s := NewSelector(catalog, nil, "")
	assert.Equal(t, []entity.Persona{"disappointed_parent", "drill_sergeant", "sarcastic_friend", "zen_master"}, s.Personas())
}

func TestPromptMatchesPersonaAndTrigger(t *testing.T) {
	s := newSelector(t, 1)
	c := entity.PromptContext{IdleMinutes: 20, Hour: hour(15)}

	for i := 0; i < 50; i++ {
		p := s.GenerateContextualPrompt(c, "zen_master")
		require.NotNil(t, p)
		assert.Equal(t, "zen-idle", p.ID)
		assert.Equal(t, entity.Persona("zen_master"), p.Persona)
	}
}

func TestNoEligiblePrompt(t *testing.T) {
	s := newSelector(t, 1)

	assert.Nil(t, s.GenerateContextualPrompt(entity.PromptContext{Hour: hour(15)}, "sarcastic_friend"))
	assert.Nil(t, s.GenerateContextualPrompt(entity.PromptContext{IdleMinutes: 90}, "unknown_persona"))
}

func TestEmptyPersonaUsesDefault(t *testing.T) {
	s := newSelector(t, 7)

	p := s.GenerateContextualPrompt(entity.PromptContext{OverdueTasks: 1, Hour: hour(15)}, "")
	require.NotNil(t, p)
	assert.Equal(t, "sergeant-overdue", p.ID)
}

func TestSelectionIsUniformAcrossEligible(t *testing.T) {
	s := newSelector(t, 42)
	c := entity.PromptContext{IdleMinutes: 90, PendingTasks: 2, Hour: hour(15)}

	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		p := s.GenerateContextualPrompt(c, "drill_sergeant")
		require.NotNil(t, p)
		counts[p.ID]++
	}

	require.Len(t, counts, 2)
	assert.InDelta(t, 1000, counts["sergeant-idle-gentle"], 150)
	assert.InDelta(t, 1000, counts["sergeant-idle-savage"], 150)
}

func TestSameSeedSameSequence(t *testing.T) {
	a, b := newSelector(t, 9), newSelector(t, 9)
	c := entity.PromptContext{IdleMinutes: 90, OverdueTasks: 4, Distractions: 5, Hour: hour(19)}

	for i := 0; i < 20; i++ {
		assert.Equal(t,
			a.GenerateContextualPrompt(c, "disappointed_parent").ID,
			b.GenerateContextualPrompt(c, "disappointed_parent").ID)
	}
}

func TestTriggerConditions(t *testing.T) {
	zero := 0
	trigger := entity.PromptTrigger{
		MaxCompletedToday: &zero,
		TaskStatuses:      []entity.TaskStatus{entity.TaskTodo},
		Hours:             []int{9, 10},
	}

	assert.True(t, trigger.Matches(entity.PromptContext{CurrentTaskStatus: entity.TaskTodo, Hour: hour(9)}))
	assert.False(t, trigger.Matches(entity.PromptContext{CurrentTaskStatus: entity.TaskTodo, Hour: hour(11)}))
	assert.False(t, trigger.Matches(entity.PromptContext{CurrentTaskStatus: entity.TaskTodo}))
	assert.False(t, trigger.Matches(entity.PromptContext{CurrentTaskStatus: entity.TaskDone, Hour: hour(9)}))
	assert.False(t, trigger.Matches(entity.PromptContext{CurrentTaskStatus: entity.TaskTodo, CompletedToday: 1, Hour: hour(9)}))
}

func TestParseCatalogValidation(t *testing.T) {
	cases := map[string]string{
		"missing id":      "prompts:\n  - persona: a\n    severity: gentle\n    message: hi\n",
		"duplicate id":    "prompts:\n  - {id: x, persona: a, severity: gentle, message: hi}\n  - {id: x, persona: a, severity: gentle, message: hi}\n",
		"bad severity":    "prompts:\n  - {id: x, persona: a, severity: brutal, message: hi}\n",
		"missing persona": "prompts:\n  - {id: x, severity: gentle, message: hi}\n",
		"not yaml":        "prompts: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}

	ok, err := ParseCatalog([]byte("prompts:\n  - {id: x, persona: a, severity: savage, message: hi, trigger: {min_idle_minutes: 5}}\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, ok[0].Trigger.MinIdleMinutes)
}

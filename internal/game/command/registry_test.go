package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalAndAlias(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("take")
	require.True(t, ok)
	assert.Equal(t, VerbTake, cmd.Verb)

	cmd, ok = r.Resolve("get")
	require.True(t, ok)
	assert.Equal(t, VerbTake, cmd.Verb)

	cmd, ok = r.Resolve("switch on")
	require.True(t, ok)
	assert.Equal(t, VerbTurnOn, cmd.Verb)

	_, ok = r.Resolve("teleport")
	assert.False(t, ok)
}

func TestUsage(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, "take lamp", r.Usage(VerbTake))
	assert.Equal(t, "", r.Usage(VerbUnknown))
}

func TestCommandName(t *testing.T) {
	r := DefaultRegistry()
	cmd, _ := r.Command(VerbTurnOn)
	assert.Equal(t, "turn on", cmd.Name())
	cmd, _ = r.Command(VerbOpen)
	assert.Equal(t, "open", cmd.Name())
}

func TestNewRegistry_DuplicateVerb(t *testing.T) {
	_, err := NewRegistry([]Command{{Verb: VerbLook}, {Verb: VerbLook}})
	assert.Error(t, err)
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Verb: VerbTake, Aliases: []string{"get"}},
		{Verb: VerbDrop, Aliases: []string{"get"}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_AliasShadowsVerb(t *testing.T) {
	_, err := NewRegistry([]Command{
		{Verb: VerbTake, Aliases: []string{"drop"}},
		{Verb: VerbDrop},
	})
	assert.Error(t, err)
}

func TestNewRegistry_RejectsLongAliasAndUnknown(t *testing.T) {
	_, err := NewRegistry([]Command{{Verb: VerbTake, Aliases: []string{"pick it up"}}})
	assert.Error(t, err)
	_, err = NewRegistry([]Command{{Verb: VerbUnknown}})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	cats := DefaultRegistry().CommandsByCategory()
	for _, c := range []string{CategoryMovement, CategoryObservation, CategoryObjects, CategoryCombat, CategorySystem} {
		assert.NotEmpty(t, cats[c], c)
	}
}

func TestEveryCommandHasUsageAndHelp(t *testing.T) {
	for _, cmd := range BuiltinCommands() {
		assert.NotEmpty(t, cmd.Usage, cmd.Verb)
		assert.NotEmpty(t, cmd.Help, cmd.Verb)
		assert.NotEmpty(t, cmd.Category, cmd.Verb)
	}
}

func TestPropertyAliasesResolveToOwner(t *testing.T) {
	cmds := BuiltinCommands()
	r := DefaultRegistry()
	rapid.Check(t, func(t *rapid.T) {
		cmd := cmds[rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd")]
		if len(cmd.Aliases) == 0 {
			return
		}
		alias := cmd.Aliases[rapid.IntRange(0, len(cmd.Aliases)-1).Draw(t, "alias")]
		got, ok := r.Resolve(alias)
		if !ok || got.Verb != cmd.Verb {
			t.Fatalf("alias %q did not resolve to %q", alias, cmd.Verb)
		}
	})
}

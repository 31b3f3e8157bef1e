// Package interaction applies the declarative verb rules authored on objects.
package interaction

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/command"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// DefaultCurseFlag is set when an interaction with CurseTrigger fires.
const DefaultCurseFlag = "cursed"

// Executor selects and applies object interactions.
type Executor struct {
	world     world.Reader
	curseFlag string
	logger    *zap.Logger
}

// NewExecutor creates an Executor. An empty curseFlag uses DefaultCurseFlag.
//
// Precondition: w and logger must be non-nil.
func NewExecutor(w world.Reader, curseFlag string, logger *zap.Logger) *Executor {
	if curseFlag == "" {
		curseFlag = DefaultCurseFlag
	}
	return &Executor{world: w, curseFlag: curseFlag, logger: logger}
}

// Match returns the first interaction on obj, in declared order, whose verb
// is verb and whose condition holds against the effective object state.
func (e *Executor) Match(verb command.Verb, obj *world.GameObject, gs *state.GameState) (*world.Interaction, bool) {
	get := func(k world.StateKey) world.Value { return gs.ObjectValue(obj, k) }
	for i := range obj.Interactions {
		in := &obj.Interactions[i]
		if !verbMatches(in.Verb, verb) {
			continue
		}
		if in.Condition.Matches(get) {
			return in, true
		}
	}
	return nil, false
}

func verbMatches(authored string, verb command.Verb) bool {
	v := string(verb)
	return authored == v || authored == strings.ReplaceAll(v, "_", " ")
}

// Apply fires the first matching interaction of verb on objectID.
//
// Postcondition: Returns false with a zero Result and unchanged state when no
// interaction matches. Otherwise the response becomes the message, state and
// flag changes are merged, the sanity effect is applied clamped, and the curse
// flag is set when the interaction triggers it.
func (e *Executor) Apply(verb command.Verb, objectID string, gs *state.GameState) (action.Result, bool) {
	obj, err := e.world.Object(objectID)
	if err != nil {
		return action.Result{}, false
	}
	in, ok := e.Match(verb, obj, gs)
	if !ok {
		return action.Result{}, false
	}

	res := action.OK(in.Response)
	for _, k := range sortedStateKeys(in.StateChange) {
		gs.SetObjectValue(obj.ID, k, in.StateChange[k])
		res.AddDelta(action.DeltaObjectState, obj.ID, string(k), int(in.StateChange[k]))
	}
	for _, name := range sortedFlagNames(in.FlagChange) {
		gs.SetFlag(name, in.FlagChange[name])
		res.AddDelta(action.DeltaFlag, name, "", int(in.FlagChange[name]))
	}
	if in.SanityEffect != 0 {
		applied := gs.AdjustSanity(in.SanityEffect)
		res.SanityDelta = applied
		if applied != 0 {
			res.AddDelta(action.DeltaSanity, "", "", applied)
		}
	}
	if in.CurseTrigger && !gs.FlagSet(e.curseFlag) {
		gs.SetFlag(e.curseFlag, 1)
		res.AddDelta(action.DeltaFlag, e.curseFlag, "", 1)
	}

	e.logger.Debug("interaction applied",
		zap.String("verb", string(verb)),
		zap.String("object", obj.ID),
		zap.Int("sanity_delta", res.SanityDelta),
		zap.Bool("curse", in.CurseTrigger),
	)
	return res, true
}

func sortedStateKeys(m world.StateMap) []world.StateKey {
	keys := make([]world.StateKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func sortedFlagNames(m map[string]world.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

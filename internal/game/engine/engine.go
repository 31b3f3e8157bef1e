// Package engine executes parsed commands against a game state.
package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/grue/internal/game/action"
	"github.com/cory-johannsen/grue/internal/game/combat"
	"github.com/cory-johannsen/grue/internal/game/command"
	"github.com/cory-johannsen/grue/internal/game/condition"
	"github.com/cory-johannsen/grue/internal/game/flavor"
	"github.com/cory-johannsen/grue/internal/game/interaction"
	"github.com/cory-johannsen/grue/internal/game/inventory"
	"github.com/cory-johannsen/grue/internal/game/light"
	"github.com/cory-johannsen/grue/internal/game/navigation"
	"github.com/cory-johannsen/grue/internal/game/resolve"
	"github.com/cory-johannsen/grue/internal/game/state"
	"github.com/cory-johannsen/grue/internal/game/world"
)

// FaultMessage is the message of a Result produced by an unexpected internal error.
const FaultMessage = "Something has gone terribly wrong. The game cannot continue."

// IncapacitatedMessage is shown once when sanity first reaches zero.
const IncapacitatedMessage = "The horror is too much. You collapse, unable to go on."

// Config holds every tunable rule of the engine.
type Config struct {
	Light     light.Config     `mapstructure:"light"`
	Inventory inventory.Config `mapstructure:"inventory"`
	Combat    combat.Config    `mapstructure:"combat"`
	// MoodThreshold is the sanity swing on room entry that produces a mood notification.
	MoodThreshold int `mapstructure:"mood_threshold"`
	// CurseFlag is set by interactions that trigger a curse.
	CurseFlag string `mapstructure:"curse_flag"`
}

// DefaultConfig returns the rules used when none are configured.
func DefaultConfig() Config {
	return Config{
		Light:         light.DefaultConfig(),
		Inventory:     inventory.DefaultConfig(),
		Combat:        combat.DefaultConfig(),
		MoodThreshold: navigation.DefaultMoodThreshold,
		CurseFlag:     interaction.DefaultCurseFlag,
	}
}

// Engine is the command dispatcher. It is not safe for concurrent use on the
// same GameState; callers serialise access per session.
type Engine struct {
	world    world.Reader
	cfg      Config
	registry *command.Registry
	resolver *resolve.Resolver
	checker  *condition.Checker
	executor *interaction.Executor
	nav      *navigation.Navigator
	items    *inventory.Rules
	combat   *combat.Engine
	lamp     *light.Lamp
	selector flavor.Selector
	logger   *zap.Logger
}

// New creates an Engine over world w. The hardcoded puzzle gates are
// registered with the navigator.
//
// Precondition: w, sel and logger must be non-nil.
func New(w world.Reader, cfg Config, sel flavor.Selector, logger *zap.Logger) *Engine {
	if cfg.CurseFlag == "" {
		cfg.CurseFlag = interaction.DefaultCurseFlag
	}
	if cfg.Light.CurseFlag == "" {
		cfg.Light.CurseFlag = cfg.CurseFlag
	}
	lamp := light.New(w, cfg.Light)
	e := &Engine{
		world:    w,
		cfg:      cfg,
		registry: command.DefaultRegistry(),
		resolver: resolve.New(w, lamp),
		checker:  condition.NewChecker(w),
		executor: interaction.NewExecutor(w, cfg.CurseFlag, logger),
		nav:      navigation.NewNavigator(w, lamp, cfg.MoodThreshold, logger),
		items:    inventory.NewRules(w, cfg.Inventory, logger),
		combat:   combat.NewEngine(w, cfg.Combat, logger),
		lamp:     lamp,
		selector: sel,
		logger:   logger,
	}
	for _, p := range passages {
		e.nav.AddGate(e.passageGate(p))
	}
	return e
}

// AddGate registers an additional exit gate, such as a scripted one.
func (e *Engine) AddGate(g navigation.Gate) {
	e.nav.AddGate(g)
}

// NewGame creates the initial state of a session.
func (e *Engine) NewGame(sessionID string) *state.GameState {
	return state.New(sessionID, e.world)
}

// Describe renders the player's current surroundings.
func (e *Engine) Describe(gs *state.GameState) (string, error) {
	return e.nav.Describe(gs)
}

// ExecuteText parses text and executes it.
func (e *Engine) ExecuteText(text string, gs *state.GameState) action.Result {
	return e.Execute(e.registry.Parse(text), gs)
}

// Execute runs one command to completion.
//
// Postcondition: Any pending disambiguation is cleared before the command
// runs; the next input is always treated as a fresh command. Reference,
// precondition, ambiguity and syntax errors become failed Results. Any other
// error or panic yields a Result with Fault set.
func (e *Engine) Execute(cmd command.ParsedCommand, gs *state.GameState) (res action.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command panicked",
				zap.Any("panic", r),
				zap.String("session", gs.SessionID),
				zap.String("input", cmd.Raw),
				zap.Stack("stack"),
			)
			res = action.Result{Message: FaultMessage, Fault: true}
		}
	}()

	gs.Pending = nil
	wasIncapacitated := gs.FlagSet(state.FlagIncapacitated)

	res, err := e.execute(cmd, gs)
	if err != nil {
		e.logger.Error("command failed",
			zap.String("session", gs.SessionID),
			zap.String("input", cmd.Raw),
			zap.Error(err),
		)
		return action.Result{Message: FaultMessage, Fault: true}
	}
	if !wasIncapacitated && gs.FlagSet(state.FlagIncapacitated) {
		res.Notify(IncapacitatedMessage)
	}

	e.logger.Debug("command executed",
		zap.String("session", gs.SessionID),
		zap.String("verb", string(cmd.Verb)),
		zap.String("object", cmd.Object),
		zap.Bool("success", res.Success),
	)
	return res
}

// turnContext carries everything a handler needs for one command.
type turnContext struct {
	cmd        command.ParsedCommand
	gs         *state.GameState
	object     *world.GameObject
	target     *world.GameObject
	instrument *world.GameObject
}

// allowedIncapacitated lists the verbs still available at zero sanity.
var allowedIncapacitated = map[command.Verb]bool{
	command.VerbRestart:   true,
	command.VerbScore:     true,
	command.VerbDiagnose:  true,
	command.VerbHelp:      true,
	command.VerbLook:      true,
	command.VerbInventory: true,
}

func (e *Engine) execute(cmd command.ParsedCommand, gs *state.GameState) (action.Result, error) {
	if cmd.Verb == command.VerbUnknown {
		if strings.TrimSpace(cmd.Raw) == "" {
			return action.Fail(flavor.Text(e.selector, flavor.Empty)), nil
		}
		return action.Fail(flavor.Text(e.selector, flavor.UnknownVerb)), nil
	}
	h, ok := handlerMap[cmd.Verb]
	if !ok {
		return action.Result{}, fmt.Errorf("no handler for verb %q", cmd.Verb)
	}
	if err := cmd.Validate(e.registry); err != nil {
		return e.convert(err, cmd, gs)
	}
	if gs.FlagSet(state.FlagIncapacitated) && !allowedIncapacitated[cmd.Verb] {
		return action.Fail("You are in no state to do that. Type RESTART to begin again."), nil
	}
	if cmd.All {
		return e.executeAll(h, cmd, gs)
	}

	tc := &turnContext{cmd: cmd, gs: gs}
	if err := e.bind(tc); err != nil {
		return e.convert(err, cmd, gs)
	}
	return e.run(h, tc)
}

// run checks the object's prerequisites and invokes the handler.
func (e *Engine) run(h handlerFunc, tc *turnContext) (action.Result, error) {
	if tc.object != nil {
		if err := e.checker.Check(tc.cmd.Verb, tc.object.ID, tc.gs); err != nil {
			return e.convert(err, tc.cmd, tc.gs)
		}
	}
	res, err := h(e, tc)
	if err != nil {
		return e.convert(err, tc.cmd, tc.gs)
	}
	return res, nil
}

// bind resolves the object, target and instrument phrases to objects in scope.
func (e *Engine) bind(tc *turnContext) error {
	cmd := tc.cmd
	if cmd.Verb == command.VerbGo {
		return nil
	}
	var err error
	if cmd.Target != "" {
		if tc.target, err = e.lookup(cmd.Target, tc.gs); err != nil {
			return err
		}
	}
	if cmd.Instrument != "" {
		if tc.instrument, err = e.lookup(cmd.Instrument, tc.gs); err != nil {
			return err
		}
	}
	if cmd.Object == "" {
		return nil
	}
	if cmd.Verb == command.VerbTake && tc.target != nil && tc.target.IsContainer() {
		if !e.items.Visible(tc.target.ID, tc.gs) {
			return &condition.FailedError{Message: fmt.Sprintf("The %s is closed.", tc.target.Name)}
		}
		id, err := e.resolver.ResolveAmong(cmd.Object, tc.gs.ContainerContents(tc.target.ID))
		if err != nil {
			return err
		}
		tc.object, err = e.world.Object(id)
		if err == nil {
			tc.cmd.Object = id
		}
		return err
	}
	if tc.object, err = e.lookup(cmd.Object, tc.gs); err != nil {
		return err
	}
	tc.cmd.Object = tc.object.ID
	return nil
}

func (e *Engine) lookup(name string, gs *state.GameState) (*world.GameObject, error) {
	id, err := e.resolver.Resolve(name, gs)
	if err != nil {
		return nil, err
	}
	return e.world.Object(id)
}

// convert turns the recoverable error taxonomy into failed Results. Any other
// error is returned unchanged.
func (e *Engine) convert(err error, cmd command.ParsedCommand, gs *state.GameState) (action.Result, error) {
	var (
		amb    *resolve.AmbiguousError
		nf     *resolve.NotFoundError
		failed *condition.FailedError
		syntax *command.SyntaxError
	)
	switch {
	case errors.As(err, &amb):
		gs.Pending = &state.PendingDisambiguation{
			Verb:       string(cmd.Verb),
			Query:      amb.Name,
			Candidates: slices.Clone(amb.Candidates),
		}
		return action.Fail(amb.Message()), nil
	case errors.As(err, &nf):
		if !e.nav.Lit(gs) {
			return action.Fail(flavor.Text(e.selector, flavor.Darkness)), nil
		}
		return action.Fail(nf.Message()), nil
	case errors.As(err, &failed):
		res := action.Fail(failed.Message)
		if failed.Hint != "" {
			res.Notify("Hint: " + failed.Hint)
		}
		return res, nil
	case errors.As(err, &syntax):
		return action.Fail(e.syntaxMessage(syntax)), nil
	case errors.Is(err, world.ErrReferenceNotFound):
		return action.Fail(flavor.Text(e.selector, flavor.NotHere)), nil
	}
	return action.Result{}, err
}

func (e *Engine) syntaxMessage(err *command.SyntaxError) string {
	name := string(err.Verb)
	if c, ok := e.registry.Command(err.Verb); ok {
		name = c.Name()
	}
	var msg string
	switch err.Missing {
	case "direction":
		msg = "Which way do you want to go?"
	case "target":
		msg = fmt.Sprintf("Where do you want to %s it?", name)
	case "single object":
		msg = fmt.Sprintf("You can only %s one thing at a time.", name)
	default:
		msg = fmt.Sprintf("What do you want to %s?", name)
	}
	if err.Usage != "" {
		msg += fmt.Sprintf(" (try %q)", err.Usage)
	}
	return msg
}

// executeAll expands "all" and "all except ..." and runs the handler once per
// object, reporting each outcome on its own line.
func (e *Engine) executeAll(h handlerFunc, cmd command.ParsedCommand, gs *state.GameState) (action.Result, error) {
	base := &turnContext{cmd: cmd, gs: gs}
	if err := e.bind(base); err != nil {
		return e.convert(err, cmd, gs)
	}

	candidates, err := e.allCandidates(base)
	if err != nil {
		return e.convert(err, cmd, gs)
	}
	excluded := make(map[string]bool)
	for _, phrase := range cmd.Except {
		for _, id := range e.world.MatchObjects(phrase, candidates) {
			excluded[id] = true
		}
	}
	var ids []string
	for _, id := range candidates {
		if !excluded[id] {
			ids = append(ids, id)
		}
	}
	name := string(cmd.Verb)
	if c, ok := e.registry.Command(cmd.Verb); ok {
		name = c.Name()
	}
	if len(ids) == 0 {
		return action.Fail(fmt.Sprintf("There is nothing to %s.", name)), nil
	}

	var agg action.Result
	for _, id := range ids {
		obj, err := e.world.Object(id)
		if err != nil {
			return action.Result{}, err
		}
		tc := &turnContext{cmd: cmd, gs: gs, object: obj, target: base.target, instrument: base.instrument}
		tc.cmd.All = false
		tc.cmd.Object = id
		res, err := e.run(h, tc)
		if err != nil {
			return action.Result{}, err
		}
		res.Message = obj.Name + ": " + res.Message
		agg.Merge(res)
	}
	return agg, nil
}

func (e *Engine) allCandidates(tc *turnContext) ([]string, error) {
	gs := tc.gs
	switch tc.cmd.Verb {
	case command.VerbTake:
		var pool []string
		if tc.target != nil {
			if !e.items.Visible(tc.target.ID, gs) {
				return nil, &condition.FailedError{Message: fmt.Sprintf("The %s is closed.", tc.target.Name)}
			}
			pool = gs.ContainerContents(tc.target.ID)
		} else if e.nav.Lit(gs) {
			pool = gs.RoomItems(gs.CurrentRoom)
		}
		var out []string
		for _, id := range pool {
			if obj, err := e.world.Object(id); err == nil && obj.Takeable {
				out = append(out, id)
			}
		}
		return out, nil
	case command.VerbPut:
		var out []string
		for _, id := range gs.Inventory {
			if tc.target == nil || id != tc.target.ID {
				out = append(out, id)
			}
		}
		return out, nil
	default:
		return slices.Clone(gs.Inventory), nil
	}
}
